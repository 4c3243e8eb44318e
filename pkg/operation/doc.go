/*
Package operation drives a codemod run.

	+-------------+
	|    Phase    |
	| (RuleSet +  |
	|  Selector)  |
	+------+------+
	       |
	+------+------+      +-------------+      +-------------+
	|   Rename    | ---> |  Discovery  | ---> |   Rewrite   |
	|   (pass)    |      |   (walk)    |      | (per file)  |
	+-------------+      +-------------+      +------+------+
	                                                 |
	                                          +------+------+
	                                          | RunSummary  |
	                                          +-------------+

🎯 Purpose:
- Validates every phase and checks every root before anything is touched
- Runs the rename pass to completion, then rewrites matching files
- Keeps going when a single file fails and records why

🔄 Flow per file:
1. Read and decode (status.Manager)
2. Apply the rule set in order
3. Re-apply to the output; any further change is an idempotence failure
4. In a dry run, print a diff; otherwise write back atomically

⚡ Errors:
- ConfigError is fatal and is raised before the first mutation
- Per-file and per-rename failures live in the RunSummary

🔍 Example:

	runner := operation.NewRunner(operation.Options{Jobs: 4, Logger: logger})
	summaries, err := runner.RunAll(ctx, phases)
*/
package operation
