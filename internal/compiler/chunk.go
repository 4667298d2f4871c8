package compiler

import "github.com/xirelogy/azura/internal/bytecode"

type Chunk = bytecode.Chunk

// Interner supplies canonical string objects for string literals and
// identifier names.
type Interner = bytecode.Interner
