/*
Package glr is a scannerless LR(1)/GLR parser generator and runtime.

It compiles a grammar described as plain Go data (glr.FromStruct) into
LR(1)/LALR(1) ACTION/GOTO tables and a token recognizer, then drives either a
deterministic LR runtime or a generalized LR runtime over a graph-structured
stack and shared packed parse forest, as selected by Options.ParserType; the
generalized runtime is the one that handles ambiguous grammars. Package
structure is as follows:

■ grammar: the canonical in-memory grammar representation (symbols,
productions, precedence), built from a structured description.

■ firstset: nullability and FIRST-set computation.

■ itemgraph: the canonical LR(1) item-set collection (closure, goto,
optional LALR core-merging).

■ table: ACTION/GOTO table construction with priority/associativity-based
conflict resolution.

■ recognize: the scannerless terminal recognizer, driven by the parser's
currently-expected terminal set rather than a fixed token stream.

■ tree: the default parse-tree building action and tree node type.

■ action: semantic action dispatch during reduction.

■ lrparse: the deterministic LR runtime.

■ gss, sppf, glrparse: the generalized LR runtime — graph-structured stack,
shared packed parse forest, and the GLR driver tying them together.

The root package ties these together behind FromStruct/Parse and holds the
types shared across all of them.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The glr Authors
*/
package glr
