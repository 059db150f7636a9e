// Package control implements the inverter grid-sell state machine.
//
// # States
//
// The controller tracks one of four process states:
//
//	unknown ──detect──► waiting_for_charge ◄──► invert ◄──► invert_sell
//
// Unknown resolves once from the live inverter setpoints (grid support
// disabled means waiting_for_charge; otherwise zero sell current means
// invert, positive means invert_sell). Thereafter four guards run in fixed
// order on every poll cycle where both devices produced a snapshot:
//
//  1. sell_start: invert -> invert_sell when battery voltage exceeds the
//     sell threshold and the settle delay has elapsed. Raises the grid
//     support voltage and opens the sell current limit.
//  2. sell_stop: invert_sell -> invert when the load falls below inverter
//     output minus the safety buffer, or the inverter reports
//     pass-through. Drops the grid support voltage and zeroes the limit.
//  3. charge_needed: any -> waiting_for_charge when grid support is on and
//     the battery runs low (or the recovery window is active). Disables
//     grid support.
//  4. charge_complete: waiting_for_charge -> invert when the charge
//     controller reaches absorb with a high state of charge outside the
//     recovery window. Re-enables grid support with selling stopped.
//
// # Failure policy
//
// A guard that cannot be evaluated (missing field, bad type) is logged and
// skipped; the remaining guards still run. Setpoint batches are
// best-effort: once the inverter session is open, a failed write does not
// roll back earlier writes in the batch. The hardware's real state is
// re-read every cycle, so a partial batch self-corrects on later cycles.
// The controller never fails the poll loop.
package control
