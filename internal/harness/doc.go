// Package harness provides conformance testing for motion catalogs.
//
// The harness resolves a motion, plays it against a fake clock, journals
// the playback into an in-memory store and checks the emitted frames
// against the scenario's assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	catalog: ../motions.yaml      # relative to the scenario file
//	motion: special_motions.QCF   # or builtin: hadouken
//	params: { button: C }
//	mirror: false
//	start: 0
//	steps: [advance, advance, quit]  # optional, plays in stepping mode
//	expect:
//	  error: cycle                   # optional, resolution must fail
//	assertions:
//	  - type: frame
//	    tick: 3
//	    buttons: [RIGHT, X]
//	  - type: order
//	    sets: [[DOWN], [DOWN, RIGHT], [RIGHT, X]]
//	  - type: count
//	    buttons: [DOWN]
//	    count: 2
//	  - type: total_frames
//	    count: 4
//	  - type: journal
//	    outcome: completed
//	    count: 5
//	    matches: true
//
// # Assertion Types
//
//   - frame: the set emitted at tick equals buttons exactly
//   - order: the sets appear in the trace in this order, gaps allowed
//   - count: the exact set is emitted on count ticks
//   - total_frames: the resolved sequence is count ticks long
//   - journal: the recorded session has this outcome and emission count,
//     and its replay does (or does not) match the played sequence
//
// # Deterministic Testing
//
// Playback runs on testutil.FakeClock, so a scenario never sleeps, and the
// journal uses sequential session IDs in a fresh in-memory SQLite database.
// Traces are identical across runs, which makes them suitable for golden
// file comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/qcf.yaml")
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
