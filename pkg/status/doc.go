/*
Package status manages file I/O and outcome tracking for codemod.

	            +-------------+
	            |   Status    |
	            |  (Storage)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +-----+-----+
	|  Manager  |           | Recorder  |
	| (Files)   |           | (Summary) |
	+-----------+           +-----------+

🎯 Purpose:
- Reads candidate files and decodes them with the phase encoding
- Writes changed files back atomically, preserving their mode
- Records per-file and per-rename outcomes into a RunSummary
- Classifies failures so the summary can name a kind for every path

🔄 Flow:
1. Manager.ReadText decodes the file (strict utf-8 by default)
2. The caller applies its rule set
3. Manager.WriteTextAtomic writes through a temp file and one rename
4. Recorder collects the outcome; Finalize sorts it by path

⚡ Failure kinds:
- read, decode, write and idempotence are per file and never abort a run
- rename-conflict and rename come from the rename pass
- discovery and validation are fatal and stop a run before it mutates anything

🔍 Example:

	codec, err := status.LookupCodec("windows-1252")
	mgr := status.New(root, codec)

	content, mode, err := mgr.ReadText(ctx, "src/pets.ts")
	// ... rewrite content ...
	err = mgr.WriteTextAtomic(ctx, "src/pets.ts", updated, mode)
*/
package status
