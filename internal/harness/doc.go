// Package harness provides conformance testing for the query engine.
//
// The harness loads YAML scenarios, runs each query against the
// scenario's roster with a frozen clock, and validates expectations as
// executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	now: "2024-03-13"
//	roster:
//	  sessions:
//	    - { id: sess1, name: Morning Yoga, start: "09:00", end: "10:00" }
//	  students:
//	    - student_id: UX23001
//	      name: Aarav Patel
//	      current_status: present
//	      history:
//	        - { date: "2024-03-11", status: absent }
//	queries:
//	  - query: "status:absent"
//	    expect:
//	      students: [UX23001]
//	      structured: true
//
// Expect clauses are exact and order-sensitive: students are matched by
// student_id, sessions by name, commands by count. Queries without an
// expect clause only have to run without a contract violation.
//
// Golden traces (RunWithGolden) complement the expect clauses with a
// full rendering of every query's outcome, regenerated via -update.
package harness
