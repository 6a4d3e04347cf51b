/*
Package operation runs rewrite sessions: it walks a directory, applies
ordered rule tables to each eligible file and writes back only what changed.

	+-------------+
	|   Session   |
	| (Core Logic)|
	+------+------+
	       |
	+------+------+
	|   Passes    |
	| (Transform) |
	+------+------+
	       |
	+------+------+
	|   Status    |
	|  (Storage)  |
	+-------------+

🎯 Purpose:
- Enumerates candidate files under a root
- Applies one or more passes (rule table + exclusion filter) per file
- Writes changed files once, atomically, and leaves unchanged files alone
- Aggregates a Report of per-file outcomes

🔄 Flow:
1. Candidates come from the status store (or an explicit file list), sorted
2. Each pass's exclusion filter is consulted on the path alone
3. Eligible files are read, every active pass is applied in order
4. Content is compared byte for byte; only a difference triggers a write
5. The outcome is tracked and added to the Report

⚡ Guarantees:
- An excluded file is never opened
- A failure on one file never stops the session
- Cancellation is observed between files, never mid-file
- Configuration problems surface in New, before any file is touched

🔍 Example:

	s, err := operation.New(operation.Options{
		FS:         osfs.New(root),
		Extensions: []string{".js"},
		Passes:     passes,
		Resolver:   resolver,
	})
	report, err := s.Run(ctx)
	if err := report.Err(); err != nil {
		// one or more files failed
	}
*/
package operation
