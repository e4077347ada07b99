package scanner

import "regexp"

var javascriptRules = []rule{
	{
		id:        "js-child-process",
		pattern:   regexp.MustCompile(`require\(\s*['"]child_process['"]\s*\)|\bchild_process\.\w+\s*\(`),
		issueType: "Process Execution",
		severity:  High,
		desc:      "child_process can execute arbitrary host commands",
	},
	{
		id:        "js-eval",
		pattern:   regexp.MustCompile(`\beval\s*\(|\bnew\s+Function\s*\(`),
		issueType: "Dynamic Code Execution",
		severity:  High,
		desc:      "eval/new Function executes dynamically constructed code",
	},
}
