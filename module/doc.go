// Package module compiles modules and connects them through imports.
//
// [Modules] is the orchestrator. It loads a module's source through a
// [Loader], expands it at a requested phase, and memoizes the result by
// resolved path and phase. Importing a module visits it, recording the
// compile-time value of every exported syntax binding in the shared store
// under its qualified name. A for-syntax import also invokes the module one
// phase up, evaluating its run-time declarations so that compile-time code
// of the importer can call them.
//
// Requesting a module that is still being compiled is an import cycle and
// fails with [ErrImportCycle].
package module
