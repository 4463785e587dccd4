// Package recordchargeoutcome implements the Record Charge Outcome use case.
//
// The billing reconciler feeds collaborator outcomes back through this command.
// Outcomes are matched by request id, not arrival order, so late or duplicate
// reports resolve safely against the loan's current state.
package recordchargeoutcome
