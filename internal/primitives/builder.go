package primitives

const (
	ctxAll      = "OTPL"
	ctxObserver = "O---"
	ctxTurtle   = "-T--"
	ctxPatch    = "--P-"
	ctxLink     = "---L"
	ctxTP       = "-TP-"
	ctxTL       = "-T-L"
	ctxTPL      = "-TPL"
	ctxOTP      = "OTP-"
)

const (
	tN   = TypeNumber
	tB   = TypeBoolean
	tS   = TypeString
	tL   = TypeList
	tW   = TypeWildcard
	tCB  = TypeCommandBlock
	tRB  = TypeReporterBlock
	tAG  = TypeAgent
	tAS  = TypeAgentset
	tCMD = TypeCommand
	tREP = TypeReporter
)

func a(t Type) Arg    { return Arg{Types: t} }
func opt(t Type) Arg  { return Arg{Types: t, Optional: true} }
func many(t Type) Arg { return Arg{Types: t, CanRepeat: true} }

func newPrim(name, ctx string, ret Type, args []Arg) *Primitive {
	return &Primitive{
		Name:          name,
		Right:         args,
		Return:        ret,
		Precedence:    PrecNormal,
		Context:       ParseContext(ctx),
		AgentsetArg:   NoArg,
		DefaultOption: -1,
		MinimumOption: -1,
	}
}

func cmd(name, ctx string, args ...Arg) *Primitive {
	return newPrim(name, ctx, TypeUnit, args)
}

func rep(name, ctx string, ret Type, args ...Arg) *Primitive {
	return newPrim(name, ctx, ret, args)
}

func infix(name string, prec int, left, ret Type, right ...Arg) *Primitive {
	p := newPrim(name, ctxAll, ret, right)
	p.Left = &Arg{Types: left}
	p.Precedence = prec
	return p
}

func (p *Primitive) in(ctx string) *Primitive {
	p.Context = ParseContext(ctx)
	return p
}

// fixed marks the primitive's block as running in ctx regardless of the caller.
func (p *Primitive) fixed(ctx string) *Primitive {
	c := ParseContext(ctx)
	p.BlockContext = &c
	p.BlockKind = BlockFixed
	p.IntroducesContext = true
	return p
}

// over marks the primitive's block as running as the agents of argument arg.
func (p *Primitive) over(arg int) *Primitive {
	p.BlockKind = BlockAgentset
	p.AgentsetArg = arg
	p.IntroducesContext = true
	return p
}

// passes marks a reporter that returns agents of the same kind as argument arg.
func (p *Primitive) passes(arg int) *Primitive {
	p.AgentsetArg = arg
	return p
}

func (p *Primitive) variadic(def, min int) *Primitive {
	p.DefaultOption = def
	p.MinimumOption = min
	return p
}

func (p *Primitive) rassoc() *Primitive {
	p.RightAssociative = true
	return p
}

func (p *Primitive) ext(name string) *Primitive {
	p.Extension = name
	return p
}

// alias registers p under additional names.
func alias(p *Primitive, names ...string) []*Primitive {
	out := []*Primitive{p}
	for _, n := range names {
		cp := *p
		cp.Name = n
		out = append(out, &cp)
	}
	return out
}

func flatten(groups ...[]*Primitive) []*Primitive {
	var out []*Primitive
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
