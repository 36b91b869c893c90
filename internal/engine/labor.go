package engine

// Reconcile enforces the labor invariant: each slot within [0, population]
// and the three-slot sum never above population. When the sum overflows, the
// surplus is shed from the slots the caller did *not* just change, so a
// fresh player assignment survives population loss for as long as possible.
// The changed slot is reduced last, and only once the others are empty.
// Deterministic and idempotent; touches nothing but the three labor fields.
func Reconcile(st *SettlementState, changed LaborSlot) {
	clampSlot(&st.LaborFood, st.Population)
	clampSlot(&st.LaborMaterial, st.Population)
	clampSlot(&st.LaborTooling, st.Population)

	overflow := st.LaborFood + st.LaborMaterial + st.LaborTooling - st.Population
	if overflow <= 0 {
		return
	}

	// Fixed shed order, skipping the protected slot first.
	order := []LaborSlot{SlotFood, SlotMaterial, SlotTooling}
	for _, slot := range order {
		if slot == changed {
			continue
		}
		overflow = shed(st, slot, overflow)
	}
	if overflow > 0 && changed != SlotNone {
		shed(st, changed, overflow)
	}
}

func clampSlot(v *int, pop int) {
	if *v < 0 {
		*v = 0
	}
	if *v > pop {
		*v = pop
	}
}

// shed removes up to overflow workers from the slot and returns what remains
// to be shed.
func shed(st *SettlementState, slot LaborSlot, overflow int) int {
	var v *int
	switch slot {
	case SlotFood:
		v = &st.LaborFood
	case SlotMaterial:
		v = &st.LaborMaterial
	case SlotTooling:
		v = &st.LaborTooling
	default:
		return overflow
	}
	take := overflow
	if take > *v {
		take = *v
	}
	*v -= take
	return overflow - take
}

// laborSum is the total assigned workforce.
func laborSum(st *SettlementState) int {
	return st.LaborFood + st.LaborMaterial + st.LaborTooling
}
