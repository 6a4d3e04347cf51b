/*
Package status owns file I/O and outcome tracking for a rewrite session.

	            +-------------+
	            |   Status    |
	            |  (Storage)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +-----+-----+
	|   Files   |           | Outcomes  |
	|  (billy)  |           |  (UI/UX)  |
	+-----------+           +-----------+

🎯 Purpose:
- Lists candidate files under the rewrite root
- Reads files and writes them back atomically
- Tracks what happened to each file (changed, unchanged, skipped, failed, no-context)

🔄 Flow:
1. The session asks for candidates (sorted, extension filtered)
2. Eligible files are read through the store
3. Changed content goes to a temp file in the same directory, then is renamed over the original
4. Every file outcome is tracked and logged

🤝 Interfaces:
- FileStore: read, atomic write, enumeration
- StatusReporter: outcome tracking and progress
- FileFormatter: formats status messages

All I/O goes through a billy.Filesystem rooted at the rewrite root, so
production code uses osfs and tests use memfs.

🔍 Example:

	mgr := status.New(osfs.New(root))

	paths, err := mgr.ListCandidates(ctx, []string{".js"}, false)
	content, err := mgr.ReadFile(ctx, paths[0])
	err = mgr.WriteFileAtomic(ctx, paths[0], rewritten)

	mgr.TrackFile(ctx, paths[0], status.FileInfo{Path: paths[0], Status: status.OutcomeChanged})
*/
package status
