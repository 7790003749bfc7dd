/*
Package config manages the rule tables and run settings for pagemod.

	            +-------------+
	            |   Config    |
	            | (Defaults)  |
	            +------+------+
	                   |
	      +-----------+-----------+------------+
	      |                       |            |
	+-----+-----+           +----+----+  +----+----+
	|   YAML    |           |   HCL   |  |  JSON   |
	| Parser    |           | Parser  |  | Parser  |
	+-----------+           +---------+  +---------+

🎯 Purpose:
- Provides the built-in page migration through Default
- Loads overrides from YAML, HCL or JSON, chosen by file extension
- Validates the merged result

🔄 Flow:
1. Start from Default()
2. Decode the file over it; omitted fields keep their defaults
3. Resolve a relative root against the config file's directory
4. Validate

HCL files may use config_dir, the absolute directory of the file:

	root = "${config_dir}/client/src/pages"

	root_pattern {
	  tag    = "div"
	  marker = "className=\"min-h-screen bg-slate-50"
	}

	tag_rename {
	  old = "Card"
	  new = "PremiumCard"
	}

	import "framer-motion" {
	  symbols = ["motion"]
	  anchor  = "@/components/PremiumPageLayout"
	}

🔍 Example:

	cfg, err := config.Load(ctx, "pagemod.yaml")
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			// show the offending field
		}
		return err
	}
*/
package config
