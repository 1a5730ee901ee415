// Package scenario describes navigation sessions in YAML and replays them
// against a navmesh.Mesh.
//
// A scenario file declares units (with guard behaviour, selectability and
// the slots they host), slots (navigator, collection or source) and an
// ordered list of steps. Each step may state the outcome it expects:
//
//	name: wizard
//	units:
//	  - key: Home
//	  - key: Editor
//	    refuse_deactivate: true
//	slots:
//	  - name: main
//	    kind: navigator
//	steps:
//	  - {slot: main, op: navigate, key: Home}
//	  - {slot: main, op: navigate, key: Editor}
//	  - {slot: main, op: back, expect: deactivation_refused}
//	  - {op: guard, key: Editor, refuse_deactivate: false}
//	  - {slot: main, op: back}
//
// Outcomes are "ok", "no_history", "error" or a failure kind such as
// "activation_refused".
package scenario
