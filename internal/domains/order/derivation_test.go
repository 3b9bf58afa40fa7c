package order

import "testing"

func line(qtyOrdered, qtyPicked, qtyShort int) Line {
	return Line{QtyOrdered: qtyOrdered, QtyPicked: qtyPicked, QtyShort: qtyShort, ShipmentBatch: 1}
}

func TestDerive_NoProgress_Open(t *testing.T) {
	lines := []Line{line(2, 0, 0), line(1, 0, 0)}
	status, rtp := Derive(1, lines)
	if status != StatusOpen || rtp {
		t.Fatalf("got status=%s readyToPack=%v, want open/false", status, rtp)
	}
}

func TestDerive_PartialProgress_Picking(t *testing.T) {
	lines := []Line{line(2, 1, 0), line(1, 0, 0)}
	status, rtp := Derive(1, lines)
	if status != StatusPicking || rtp {
		t.Fatalf("got status=%s readyToPack=%v, want picking/false", status, rtp)
	}
}

func TestDerive_AllDoneViaShort_ReadyToPack(t *testing.T) {
	lines := []Line{line(2, 1, 1), line(1, 0, 1)}
	status, rtp := Derive(1, lines)
	if status != StatusReadyToPack || !rtp {
		t.Fatalf("got status=%s readyToPack=%v, want ready_to_pack/true", status, rtp)
	}
}

func TestDerive_AllDoneMixed_ReadyToPack(t *testing.T) {
	lines := []Line{line(3, 3, 0), line(2, 0, 2)}
	status, rtp := Derive(1, lines)
	if status != StatusReadyToPack || !rtp {
		t.Fatalf("got status=%s readyToPack=%v, want ready_to_pack/true", status, rtp)
	}
}

func TestDerive_EmptyShipment_ReadyToPack(t *testing.T) {
	status, rtp := Derive(1, nil)
	if status != StatusReadyToPack || !rtp {
		t.Fatalf("an empty line set is vacuously all-done: got status=%s readyToPack=%v", status, rtp)
	}
}

func TestLinesInShipment_FiltersByBatch(t *testing.T) {
	lines := []Line{
		{ID: 1, ShipmentBatch: 1},
		{ID: 2, ShipmentBatch: 2},
		{ID: 3, ShipmentBatch: 1},
	}
	got := LinesInShipment(lines, 1)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected filter result: %+v", got)
	}
}

func TestLine_RemainingAndDone(t *testing.T) {
	l := Line{QtyOrdered: 5, QtyPicked: 2, QtyShort: 1}
	if l.Remaining() != 2 {
		t.Fatalf("remaining = %d, want 2", l.Remaining())
	}
	if l.Done() {
		t.Fatalf("line with remaining units should not be done")
	}

	l.QtyPicked = 4
	if !l.Done() {
		t.Fatalf("line with qty_picked+qty_short == qty_ordered should be done")
	}
}
