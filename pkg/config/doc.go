/*
Package config loads codemod phase definitions.

	            +-------------+
	            |   Config    |
	            |  (Phases)   |
	            +------+------+
	                   |
	      +-----------+-----------+-----------+
	      |                       |           |
	+-----+-----+           +----+----+  +----+----+
	|    HCL    |           |  YAML   |  |  JSON   |
	|  Parser   |           | Parser  |  | Parser  |
	+-----------+           +---------+  +---------+

🎯 Purpose:
- Each migration step is a named phase: rules, file selection and renames
- Rules and renames are ordered lists, never maps, so order survives parsing
- Validate fills defaults (root ".", encoding utf-8, rename policy refuse)
- Build compiles phases into operation.Phase values

🔄 Flow:
1. Load picks a parser from the file extension
2. The parser decodes into Config
3. Validate normalizes and checks the result
4. Build compiles rule sets against the chosen root

📝 HCL notes:
The variable "defaults" holds common selector values
(defaults.ignore_dirs, defaults.code_extensions, defaults.web_extensions)
and the functions concat, distinct, lower and upper are available to extend
them. HCL reads "${" and "%{" as
template syntax, so a replacement that needs a literal "${name}" group
reference is written "$${name}". Plain "$1" needs no escaping.

🔍 Example:

	phase "brand" {
	  extensions  = defaults.web_extensions
	  ignore_dirs = defaults.ignore_dirs

	  rule {
	    literal = "AuZap"
	    replace = "Oxy"
	  }
	}
*/
package config
