// Package rules compiles declarative YAML rule sets into compliance rules.
//
// A rule file lists rule sets. Each targets one object kind and declares
// attribute checks:
//
//	rules:
//	  - id: device-naming
//	    kind: device
//	    enforce: false
//	    checks:
//	      - attribute: name
//	        required: true
//	      - attribute: name
//	        regex: '[a-z0-9-]+$'
//	      - attribute: position
//	        min: 1
//	        max: 52
//	      - attribute: asset_tag
//	        unique: 1
//
// Every failing check contributes one attribute message; the results are
// merged into a single compliance.ComplianceError.
//
// Rule sets come from two providers: BundledProvider serves the files embedded
// under bundled/, RemoteProvider reads <prefix>/*.yaml from the object store.
package rules
