// Package catalog loads motion catalogs and resolves motions into flat
// Sequences.
//
// A catalog document has a metadata block and one map per category:
//
//	metadata: {game: "KOF XV", fps: 60, version: "1.0"}
//	basic_attacks:
//	  st_A:
//	    frames:
//	      - {input: "5", hold: 3}
//	      - {input: "5+A", hold: 1}
//	combos:
//	  cr_B_cr_A:
//	    sequence:
//	      - ref: basic_attacks.cr_B
//	      - wait: 2
//	      - ref: special_motions.QCF
//	        button: A
//
// Documents may be JSON, YAML or CUE. After loading, a Catalog is read-only
// and safe for concurrent Resolve calls.
//
// # Resolution
//
// Each step is handled in two phases: the parameter context is resolved
// first, then placeholders are substituted and the result is parsed. This
// keeps "no value for {button}" (UnresolvedPlaceholderError) distinct from
// "Z is not a button" (a warning; the part is skipped).
//
// Placeholder lookup order, first hit wins:
//  1. params passed to Resolve
//  2. the bindings (params/button) on the step that referenced the motion
//  3. the motion's declared parameter defaults
//  4. the same lookup on the referencing motion, outward
//
// References are guarded by the set of motions currently being expanded;
// re-entering one fails with ReferenceCycleError instead of recursing.
package catalog
