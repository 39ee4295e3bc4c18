package types

import "strings"

// greekLetters cycles α, β, γ, … ω, then adds a numeric suffix once
// the alphabet is exhausted, matching spec §6's "Greek letters … for
// generated variables".
var greekLetters = []rune("αβγδεζηθικλμνξοπρστυφχψω")

// Print renders a monotype in the wire format specified in §6: constants
// by name, applications as "(op arg1 … argn)", function types as
// "(-> arg1 … argn effect result)", vectors as "[t]", records as
// "{:l t … | tail?}", effects as "(effect lbl … | tail?)", and
// variables as Greek letters (generated) or the programmer's own name
// (user-specified).
func Print(t Monotype) string {
	return newPrinter().print(t)
}

// PrintScheme renders a Scheme as "∀v1 v2. body".
func PrintScheme(s *Scheme) string {
	p := newPrinter()
	if len(s.Vars) == 0 {
		return p.print(s.Type)
	}
	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = p.nameFor(Var{Name: v.Name, VarKind: v.Kind})
	}
	return "∀" + strings.Join(names, " ") + ". " + p.print(s.Type)
}

// printer assigns a stable, readable Greek-letter alias to every
// generated variable it encounters, reused across one Print call so
// the same variable always prints the same way within one type.
type printer struct {
	next    int
	aliases map[string]string
}

func newPrinter() *printer {
	return &printer{aliases: make(map[string]string)}
}

func (p *printer) nameFor(v Var) string {
	if v.UserSpecified {
		return v.Name
	}
	if alias, ok := p.aliases[v.Name]; ok {
		return alias
	}
	alias := p.letter(p.next)
	p.next++
	p.aliases[v.Name] = alias
	return alias
}

func (p *printer) letter(i int) string {
	n := len(greekLetters)
	if i < n {
		return string(greekLetters[i])
	}
	return string(greekLetters[i%n]) + itoa(i/n)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := "0123456789"
	var b []byte
	for i > 0 {
		b = append([]byte{digits[i%10]}, b...)
		i /= 10
	}
	return string(b)
}

func (p *printer) print(t Monotype) string {
	switch t := t.(type) {
	case Constant:
		return t.Name
	case Var:
		return p.nameFor(t)
	case RowEmpty:
		return "{}"
	case RowExt:
		return p.printRecordLike(t, "{", "}", true)
	case App:
		return p.printApp(t)
	default:
		return "<?>"
	}
}

// printEffect renders a function type's effect slot: a bare
// unconstrained row variable prints as just that variable (matching
// spec §8 scenario 2, `(-> α β α)`), while a row with any concrete
// structure — at least RowEmpty, meaning "no effects observed" — prints
// through the "(effect lbl … | tail?)" wrapper (scenario 11).
func (p *printer) printEffect(effect Monotype) string {
	if v, ok := effect.(Var); ok {
		return p.print(v)
	}
	return p.printRecordLike(effect, "(effect ", ")", false)
}

func (p *printer) printApp(t App) string {
	switch t.Op {
	case OpFunc:
		args, effect, result := FuncParts(t)
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = p.print(a)
		}
		return "(-> " + strings.Join(parts, " ") + " " + p.printEffect(effect) + " " + p.print(result) + ")"
	case OpVector:
		return "[" + p.print(t.Args[0]) + "]"
	case OpRecord:
		return p.print(t.Args[0])
	case OpVariant:
		return "(variant " + p.print(t.Args[0]) + ")"
	case OpEffect:
		return p.printRecordLike(t.Args[0], "(effect ", ")", false)
	case OpValues:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = p.print(a)
		}
		return "(values " + strings.Join(parts, " ") + ")"
	default:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = p.print(a)
		}
		return "(" + t.Op + " " + strings.Join(parts, " ") + ")"
	}
}

// printRecordLike renders a row as either "{:l t … | tail?}" (records,
// withTypes=true) or "(effect lbl … | tail?)" (effects,
// withTypes=false). open/close bracket the label list.
func (p *printer) printRecordLike(t Monotype, open, close string, withTypes bool) string {
	labels, tail := flattenRow(t)
	keys := sortedKeys(labels)
	var parts []string
	for _, k := range keys {
		if withTypes {
			parts = append(parts, ":"+k+" "+p.print(labels[k]))
		} else {
			parts = append(parts, k)
		}
	}
	body := strings.Join(parts, " ")
	if _, closed := tail.(RowEmpty); !closed {
		if body != "" {
			body += " "
		}
		body += "| " + p.print(tail)
	}
	if open == "{" {
		return open + body + close
	}
	return strings.TrimRight(open+body, " ") + close
}
