package record

import (
	"strings"

	"flashsync/pkg/firefly"
)

// Raster renders flash onsets as one text row per agent over width columns
// covering ticks [from, to). A column shows '|' when the agent started a flash
// in that time slice.
func Raster(events []Event, agents int, from, to int64, width int) []string {
	if agents <= 0 || width <= 0 || to <= from {
		return nil
	}
	rows := make([][]byte, agents)
	for i := range rows {
		rows[i] = []byte(strings.Repeat(".", width))
	}
	span := to - from
	flash := firefly.Flash.String()
	for _, e := range events {
		if e.To != flash || e.Tick < from || e.Tick >= to || e.Agent < 0 || e.Agent >= agents {
			continue
		}
		col := int((e.Tick - from) * int64(width) / span)
		rows[e.Agent][col] = '|'
	}
	out := make([]string, agents)
	for i, row := range rows {
		out[i] = string(row)
	}
	return out
}

// Onsets returns the ticks at which agent started a flash.
func Onsets(events []Event, agent int) []int64 {
	flash := firefly.Flash.String()
	var out []int64
	for _, e := range events {
		if e.Agent == agent && e.To == flash {
			out = append(out, e.Tick)
		}
	}
	return out
}
