package main

import (
	"fmt"
	"io"
	"strings"

	"lingoscope/pkg/decompiler"
	"lingoscope/pkg/opcode"
)

type ScriptInsights struct {
	ID       int
	Name     string
	Handlers []HandlerInfo
}

type HandlerInfo struct {
	Name      string
	Arguments []string
	Calls     []string
	Loops     int
	Branches  int
	Bytes     int
}

func analyzeScript(s *decompiler.Script) ScriptInsights {
	insights := ScriptInsights{ID: s.ID, Name: s.Name}

	for _, h := range s.Handlers {
		info := HandlerInfo{Name: h.Name, Arguments: h.ArgumentNames, Bytes: len(h.Code)}
		seen := map[string]bool{}

		for _, ins := range h.Instructions {
			var call string
			switch ins.Opcode {
			case opcode.OpExtCall:
				call, _ = s.NameAt(int(ins.Operand))
			case opcode.OpObjCall:
				if name, ok := s.NameAt(int(ins.Operand)); ok {
					call = "obj." + name
				}
			case opcode.OpLocalCall:
				if i := int(ins.Operand); i >= 0 && i < len(s.Handlers) {
					call = s.Handlers[i].Name
				}
			case opcode.OpEndRepeat:
				info.Loops++
			case opcode.OpJmpIfZ:
				info.Branches++
			}

			if call != "" && !seen[call] {
				seen[call] = true
				info.Calls = append(info.Calls, call)
			}
		}

		insights.Handlers = append(insights.Handlers, info)
	}
	return insights
}

func printHandlerInsights(out io.Writer, insights ScriptInsights) {
	fmt.Fprintf(out, "Script %d %q: %d handlers\n", insights.ID, insights.Name, len(insights.Handlers))
	if len(insights.Handlers) == 0 {
		fmt.Fprintln(out, "  · No handlers.")
		return
	}

	for _, h := range insights.Handlers {
		fmt.Fprintf(out, "  · on %s %s (%d bytes, %d loops, %d branches)\n", h.Name, strings.Join(h.Arguments, ", "), h.Bytes, h.Loops, h.Branches)
		if len(h.Calls) > 0 {
			fmt.Fprintf(out, "      calls %s\n", strings.Join(h.Calls, ", "))
		}
	}
}
