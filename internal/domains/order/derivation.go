package order

// Derive is the sole writer of Status and ReadyToPack outside explicit
// operator transitions. It is pure: given the order's current shipment
// number and the lines belonging to that shipment, it returns the status
// and ready_to_pack the order should have. Callers persist the result via
// Repository.ApplyDerivation inside the same transaction as the line
// mutation that triggered it.
func Derive(currentShipment int, linesInCurrentShipment []Line) (status Status, readyToPack bool) {
	allDone := true
	anyProgress := false
	for _, l := range linesInCurrentShipment {
		if !l.Done() {
			allDone = false
		}
		if l.QtyPicked > 0 || l.QtyShort > 0 {
			anyProgress = true
		}
	}

	if allDone {
		return StatusReadyToPack, true
	}
	if anyProgress {
		return StatusPicking, false
	}
	return StatusOpen, false
}

// LinesInShipment filters lines to those belonging to the given shipment
// batch, the subset the pick list and derivation both operate on.
func LinesInShipment(lines []Line, shipment int) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ShipmentBatch == shipment {
			out = append(out, l)
		}
	}
	return out
}
