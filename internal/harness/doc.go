// Package harness provides conformance testing for the flow editor.
//
// The harness loads a starting document, applies an edit script through
// a real editor session, and checks the outcome against the scenario's
// expectations. Scenarios double as executable documentation of editing
// behavior: what commits, what rolls back, and what the document looks
// like afterwards.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario-name
//	description: "What this scenario demonstrates"
//	document: documents/intake.json
//	actors: [nurse, doctor]
//	actions: [record vitals, treat patient]
//	script:
//	  - op: insert_after
//	    target: "1.001"
//	    step: { actor: nurse, action: record vitals }
//	  - op: renumber
//	    width: 3
//	expect:
//	  state: committed
//	  keys: ["1.001", "1.002", "1.003"]
//	  codes: [APF0602]
//	  renames:
//	    "1.0015": "1.002"
//
// The document path is resolved relative to the scenario file; small
// documents can be embedded with document_inline instead. Script
// entries use exactly the edit-script format the apply command takes.
//
// # Expectations
//
// The expect clause supports:
//
//   - state: terminal transaction state, "committed" or "rolled_back"
//   - error_contains: substring of the transaction error on rollback
//   - keys: the session document's step keys in order after the run
//   - codes: diagnostic codes that must be present in the final output
//   - renames: old key to new key entries the script must have produced
//
// # Deterministic Testing
//
// Scenarios run with fixed commit tokens (commit_token, default
// "txn-1") so results and golden snapshots are byte-stable across
// runs. Golden comparison snapshots the session document as wire JSON:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/insert.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
