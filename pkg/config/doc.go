/*
Package config loads rewrite configuration and compiles it into session options.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +-----------+-----------+-----------+
	      |           |                       |
	+-----+-----+ +---+-----+           +-----+-----+
	|   YAML    | |   HCL   |           |   JSON    |
	|  Parser   | | Parser  |           |  Parser   |
	+-----------+ +---------+           +-----------+

🎯 Purpose:
- Reads a config file with the parser registered for its extension
- Validates it and fills defaults (root, pass names, extension dots)
- Compiles rules, exclusions and path contexts with Build

🔄 Flow:
1. Load reads the file and picks a parser
2. The parser decodes strictly; unknown fields are errors
3. Validate checks required fields, guards and context references
4. Build compiles everything into operation.Options

⚡ Failure model:
Every malformed pattern, glob or context prefix is reported by Load or
Build. Nothing here touches the files being rewritten.

🔍 Example:

	cfg, err := config.Load(ctx, ".rewriterc.yaml")
	opts, err := cfg.Build(osfs.New(cfg.RootDir()))
	session, err := operation.New(opts)
*/
package config
