/*
Package operation runs the per-file pipeline over a source tree.

	+-------------+      +-------------+      +-------------+
	|  Discover   | ---> | Transformer | ---> |   status    |
	| (doublestar)|      |  (codemod)  |      | (atomic io) |
	+-------------+      +-------------+      +-------------+

🎯 Purpose:
- Selects files with include globs and a skip list
- Runs the transformer on each file through a bounded errgroup
- Delegates reads, writes and outcome tracking to the status package

🔄 Flow:
1. Discover files under the root
2. Read each file fully
3. Transform its text
4. Write it back atomically, or render a diff on dry runs
5. Track the outcome

⚡ Key Responsibilities:
- Per-file isolation: a failure on one file never stops the others
- Nothing is written for files the transformer could not rewrite safely
- Cancellation through the context

🔍 Example:

	op := operation.NewRewriteOperation(operation.Options{
		Root:        cfg.Root,
		Include:     cfg.Include,
		Skip:        cfg.Skip,
		Transformer: pipeline,
		Files:       mgr,
		Reporter:    mgr,
		Jobs:        cfg.Jobs,
	})
	summary, err := op.Execute(ctx)
*/
package operation
