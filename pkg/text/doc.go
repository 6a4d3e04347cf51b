/*
Package text applies ordered pattern→replacement rule tables to file content.

	+-----------+     +-----------+     +-----------+
	|   Rules   | --> |  Fix-ups  | --> |  Result   |
	| (ordered) |     | (fixpoint)|     |           |
	+-----------+     +-----------+     +-----------+

🎯 Purpose:
- Compile rule tables once, failing fast on malformed patterns
- Apply rules in declared order; later rules see earlier output
- Skip rules whose guard reports them already applied
- Run fix-up rules last until content stops changing

A rule may name a path context. Its replacement then carries the
{{context}} placeholder, filled per file by a ContextResolver; when the
resolver has no fragment for the path the rule is skipped and reported in
ReplacementResult.NoContext.

🔍 Example:

	table, err := text.Compile([]text.RuleSpec{
		{Pattern: "bg-white", Replacement: "bg-card text-card-foreground"},
		{Pattern: "bg-blue-50", Replacement: "bg-blue-50 dark:bg-blue-950/30", Guard: text.ReplacementPresent},
	}, []text.RuleSpec{
		text.CollapseRepeats("border-border"),
	})
	if err != nil {
		return err
	}
	res, err := table.Apply(ctx, "page.js", content, nil)
*/
package text
