/*
Package status manages file storage and outcome tracking for pagemod.

	            +-------------+
	            |   Status    |
	            |  (Storage)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +-----+-----+
	|   Files   |           | Outcomes  |
	| (Storage) |           | (Summary) |
	+-----------+           +-----------+

🎯 Purpose:
- Reads source files and replaces them atomically
- Tracks one Outcome per file
- Aggregates outcomes into a run Summary

🔄 Flow:
1. The operation reads a file through the Manager
2. The pipeline returns rewritten text and an Outcome
3. Transformed text is written with WriteFileAtomic (temp file + rename)
4. The entry is tracked and later summarized

📊 Outcomes:
  - unchanged: nothing to do
  - transformed: rewritten
  - ambiguous-skip: several roots matched, only the first was rewritten
  - structural-defect: could not be repaired safely, file left untouched
  - failed: I/O error

A file with a structural defect is never written. A failed write leaves the
original in place because the temp file is only renamed once fully written.

🔍 Example:

	mgr := status.New(root, zerolog.Ctx(ctx))

	content, err := mgr.ReadFile(ctx, "src/pages/Profile.tsx")

	err = mgr.WriteFileAtomic(ctx, "src/pages/Profile.tsx", rewritten)

	mgr.Track(ctx, status.Entry{Path: "src/pages/Profile.tsx", Outcome: status.OutcomeTransformed, Written: true})

	summary := mgr.Summary()
*/
package status
