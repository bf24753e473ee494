package primitives

func corePrimitives() []*Primitive {
	return flatten(
		observerCommands(),
		turtleCommands(),
		controlCommands(),
		outputCommands(),
		plotCommands(),
		fileCommands(),
		agentReporters(),
		mathReporters(),
		listReporters(),
		worldReporters(),
		operators(),
	)
}

func observerCommands() []*Primitive {
	return flatten(
		alias(cmd("clear-all", ctxObserver), "ca"),
		alias(cmd("clear-drawing", ctxObserver), "cd"),
		alias(cmd("clear-patches", ctxObserver), "cp"),
		alias(cmd("clear-turtles", ctxObserver), "ct"),
		[]*Primitive{
			cmd("clear-globals", ctxObserver),
			cmd("clear-links", ctxObserver),
			cmd("clear-ticks", ctxObserver),
			cmd("reset-ticks", ctxObserver),
			cmd("tick", ctxObserver),
			cmd("tick-advance", ctxObserver, a(tN)),
			cmd("resize-world", ctxObserver, a(tN), a(tN), a(tN), a(tN)),
			cmd("set-patch-size", ctxObserver, a(tN)),
			cmd("set-default-shape", ctxObserver, a(TypeTurtleset|TypeLinkset), a(tS)),
			cmd("diffuse", ctxObserver, a(TypeReference), a(tN)),
			cmd("diffuse4", ctxObserver, a(TypeReference), a(tN)),
			cmd("follow", ctxObserver, a(TypeTurtle)),
			cmd("ride", ctxObserver, a(TypeTurtle)),
			cmd("watch", ctxObserver, a(tAG)),
			cmd("import-world", ctxObserver, a(tS)),
			cmd("import-drawing", ctxObserver, a(tS)),
			cmd("import-pcolors", ctxObserver, a(tS)),
			cmd("import-pcolors-rgb", ctxObserver, a(tS)),
			cmd("export-world", ctxAll, a(tS)),
			cmd("export-view", ctxAll, a(tS)),
			cmd("export-interface", ctxAll, a(tS)),
			cmd("export-output", ctxAll, a(tS)),
			cmd("setup-plots", ctxAll),
			cmd("update-plots", ctxAll),
			cmd("display", ctxAll),
			cmd("no-display", ctxAll),
			cmd("random-seed", ctxAll, a(tN)),
			cmd("reset-timer", ctxAll),
			cmd("inspect", ctxAll, a(tAG)),
			cmd("stop-inspecting", ctxAll, a(tAG)),
			cmd("stop-inspecting-dead-agents", ctxAll),
			cmd("layout-circle", ctxAll, a(TypeTurtleset|tL), a(tN)),
			cmd("layout-radial", ctxAll, a(TypeTurtleset), a(TypeLinkset), a(TypeTurtle)),
			cmd("layout-spring", ctxAll, a(TypeTurtleset), a(TypeLinkset), a(tN), a(tN), a(tN)),
			cmd("layout-tutte", ctxAll, a(TypeTurtleset), a(TypeLinkset), a(tN)),
			cmd("beep", ctxAll),
			cmd("user-message", ctxAll, a(tW)),
			cmd("set-current-directory", ctxAll, a(tS)),
			cmd("hubnet-reset", ctxObserver),
			cmd("hubnet-fetch-message", ctxObserver),
			cmd("hubnet-send", ctxObserver, a(tS|tL), a(tS), a(tW)),
			cmd("hubnet-broadcast", ctxObserver, a(tS), a(tW)),
		},
		alias(cmd("create-turtles", ctxObserver, a(tN), opt(tCB)).fixed(ctxTurtle), "crt"),
		alias(cmd("create-ordered-turtles", ctxObserver, a(tN), opt(tCB)).fixed(ctxTurtle), "cro"),
		alias(cmd("reset-perspective", ctxAll), "rp"),
	)
}

func turtleCommands() []*Primitive {
	return flatten(
		alias(cmd("forward", ctxTurtle, a(tN)), "fd"),
		alias(cmd("back", ctxTurtle, a(tN)), "bk"),
		alias(cmd("left", ctxTurtle, a(tN)), "lt"),
		alias(cmd("right", ctxTurtle, a(tN)), "rt"),
		alias(cmd("hide-turtle", ctxTurtle), "ht"),
		alias(cmd("show-turtle", ctxTurtle), "st"),
		alias(cmd("pen-down", ctxTurtle), "pd"),
		alias(cmd("pen-up", ctxTurtle), "pu"),
		alias(cmd("pen-erase", ctxTurtle), "pe"),
		[]*Primitive{
			cmd("jump", ctxTurtle, a(tN)),
			cmd("setxy", ctxTurtle, a(tN), a(tN)),
			cmd("home", ctxTurtle),
			cmd("move-to", ctxTurtle, a(tAG)),
			cmd("face", ctxTurtle, a(tAG)),
			cmd("facexy", ctxTurtle, a(tN), a(tN)),
			cmd("downhill", ctxTurtle, a(TypeReference)),
			cmd("downhill4", ctxTurtle, a(TypeReference)),
			cmd("uphill", ctxTurtle, a(TypeReference)),
			cmd("uphill4", ctxTurtle, a(TypeReference)),
			cmd("follow-me", ctxTurtle),
			cmd("ride-me", ctxTurtle),
			cmd("watch-me", ctxTPL),
			cmd("set-line-thickness", ctxTurtle, a(tN)),
			cmd("die", ctxTL),
			cmd("stamp", ctxTL),
			cmd("stamp-erase", ctxTL),
			cmd("hide-link", ctxLink),
			cmd("show-link", ctxLink),
			cmd("tie", ctxLink),
			cmd("untie", ctxLink),
			cmd("hatch", ctxTurtle, a(tN), opt(tCB)).fixed(ctxTurtle),
			cmd("sprout", ctxPatch, a(tN), opt(tCB)).fixed(ctxTurtle),
			cmd("create-link-with", ctxTurtle, a(TypeTurtle), opt(tCB)).fixed(ctxLink),
			cmd("create-link-to", ctxTurtle, a(TypeTurtle), opt(tCB)).fixed(ctxLink),
			cmd("create-link-from", ctxTurtle, a(TypeTurtle), opt(tCB)).fixed(ctxLink),
			cmd("create-links-with", ctxTurtle, a(TypeTurtleset), opt(tCB)).fixed(ctxLink),
			cmd("create-links-to", ctxTurtle, a(TypeTurtleset), opt(tCB)).fixed(ctxLink),
			cmd("create-links-from", ctxTurtle, a(TypeTurtleset), opt(tCB)).fixed(ctxLink),
		},
	)
}

func controlCommands() []*Primitive {
	return []*Primitive{
		cmd("ask", ctxAll, a(tAG|tAS), a(tCB)).over(0),
		cmd("ask-concurrent", ctxAll, a(tAS), a(tCB)).over(0),
		cmd("if", ctxAll, a(tB), a(tCB)),
		cmd("ifelse", ctxAll, a(tB), a(tCB), many(tB|tCB)).variadic(3, 2),
		cmd("repeat", ctxAll, a(tN), a(tCB)),
		cmd("loop", ctxAll, a(tCB)),
		cmd("while", ctxAll, a(tRB), a(tCB)),
		cmd("every", ctxAll, a(tN), a(tCB)),
		cmd("carefully", ctxAll, a(tCB), a(tCB)),
		cmd("without-interruption", ctxAll, a(tCB)),
		cmd("with-local-randomness", ctxAll, a(tCB)),
		cmd("foreach", ctxAll, many(tL), a(tCMD)).variadic(2, 2),
		cmd("run", ctxAll, a(tS|tCMD), Arg{Types: tW, CanRepeat: true, Optional: true}).variadic(1, 1),
		cmd("wait", ctxAll, a(tN)),
		cmd("stop", ctxAll),
		cmd("report", ctxAll, a(tW)),
		cmd("error", ctxAll, a(tW)),
		cmd("let", ctxAll, a(TypeSymbol), a(tW)),
		cmd("set", ctxAll, a(TypeReference), a(tW)),
	}
}

func outputCommands() []*Primitive {
	return []*Primitive{
		cmd("print", ctxAll, a(tW)),
		cmd("show", ctxAll, a(tW)),
		cmd("type", ctxAll, a(tW)),
		cmd("write", ctxAll, a(tW)),
		cmd("output-print", ctxAll, a(tW)),
		cmd("output-show", ctxAll, a(tW)),
		cmd("output-type", ctxAll, a(tW)),
		cmd("output-write", ctxAll, a(tW)),
		cmd("clear-output", ctxAll),
	}
}

func plotCommands() []*Primitive {
	return []*Primitive{
		cmd("plot", ctxAll, a(tN)),
		cmd("plotxy", ctxAll, a(tN), a(tN)),
		cmd("plot-pen-down", ctxAll),
		cmd("plot-pen-up", ctxAll),
		cmd("plot-pen-reset", ctxAll),
		cmd("clear-plot", ctxAll),
		cmd("clear-all-plots", ctxAll),
		cmd("set-current-plot", ctxAll, a(tS)),
		cmd("set-current-plot-pen", ctxAll, a(tS)),
		cmd("set-plot-pen-color", ctxAll, a(tN)),
		cmd("set-plot-pen-interval", ctxAll, a(tN)),
		cmd("set-plot-pen-mode", ctxAll, a(tN)),
		cmd("set-plot-x-range", ctxAll, a(tN), a(tN)),
		cmd("set-plot-y-range", ctxAll, a(tN), a(tN)),
		cmd("set-plot-background-color", ctxAll, a(tN)),
		cmd("set-histogram-num-bars", ctxAll, a(tN)),
		cmd("histogram", ctxAll, a(tL)),
		cmd("auto-plot-on", ctxAll),
		cmd("auto-plot-off", ctxAll),
		cmd("create-temporary-plot-pen", ctxAll, a(tS)),
		cmd("export-plot", ctxAll, a(tS), a(tS)),
		cmd("export-all-plots", ctxAll, a(tS)),
		rep("plot-x-min", ctxAll, tN),
		rep("plot-x-max", ctxAll, tN),
		rep("plot-y-min", ctxAll, tN),
		rep("plot-y-max", ctxAll, tN),
		rep("plot-name", ctxAll, tS),
		rep("plot-pen-exists?", ctxAll, tB, a(tS)),
	}
}

func fileCommands() []*Primitive {
	return []*Primitive{
		cmd("file-open", ctxAll, a(tS)),
		cmd("file-close", ctxAll),
		cmd("file-close-all", ctxAll),
		cmd("file-delete", ctxAll, a(tS)),
		cmd("file-flush", ctxAll),
		cmd("file-print", ctxAll, a(tW)),
		cmd("file-show", ctxAll, a(tW)),
		cmd("file-type", ctxAll, a(tW)),
		cmd("file-write", ctxAll, a(tW)),
		rep("file-at-end?", ctxAll, tB),
		rep("file-exists?", ctxAll, tB, a(tS)),
		rep("file-read", ctxAll, tW),
		rep("file-read-characters", ctxAll, tS, a(tN)),
		rep("file-read-line", ctxAll, tS),
		rep("user-directory", ctxAll, tS),
		rep("user-file", ctxAll, tS),
		rep("user-new-file", ctxAll, tS),
		rep("hubnet-message", ctxObserver, tW),
		rep("hubnet-message?", ctxObserver, tB),
		rep("hubnet-message-source", ctxObserver, tS),
		rep("hubnet-message-tag", ctxObserver, tS),
		rep("hubnet-enter-message?", ctxObserver, tB),
		rep("hubnet-exit-message?", ctxObserver, tB),
	}
}

func agentReporters() []*Primitive {
	return []*Primitive{
		rep("turtles", ctxAll, TypeTurtleset),
		rep("patches", ctxAll, TypePatchset),
		rep("links", ctxAll, TypeLinkset),
		rep("turtle", ctxAll, TypeTurtle|TypeNobody, a(tN)),
		rep("patch", ctxAll, TypePatch|TypeNobody, a(tN), a(tN)),
		rep("link", ctxAll, TypeLink|TypeNobody, a(tN), a(tN)),
		rep("no-turtles", ctxAll, TypeTurtleset),
		rep("no-patches", ctxAll, TypePatchset),
		rep("no-links", ctxAll, TypeLinkset),
		rep("turtle-set", ctxAll, TypeTurtleset, many(tW)).variadic(1, 0),
		rep("patch-set", ctxAll, TypePatchset, many(tW)).variadic(1, 0),
		rep("link-set", ctxAll, TypeLinkset, many(tW)).variadic(1, 0),
		rep("self", ctxTPL, tAG),
		rep("myself", ctxTPL, tAG),
		rep("other", ctxTPL, tAS, a(tAS)).passes(0),
		rep("count", ctxAll, tN, a(tAS)),
		rep("any?", ctxAll, tB, a(tAS)),
		rep("all?", ctxAll, tB, a(tAS), a(tRB)).over(0),
		rep("one-of", ctxAll, tW, a(tL|tAS)).passes(0),
		rep("n-of", ctxAll, tL|tAS, a(tN), a(tL|tAS)).passes(1),
		rep("up-to-n-of", ctxAll, tL|tAS, a(tN), a(tL|tAS)).passes(1),
		rep("max-one-of", ctxAll, tAG|TypeNobody, a(tAS), a(tRB)).over(0),
		rep("min-one-of", ctxAll, tAG|TypeNobody, a(tAS), a(tRB)).over(0),
		rep("max-n-of", ctxAll, tAS, a(tN), a(tAS), a(tRB)).over(1),
		rep("min-n-of", ctxAll, tAS, a(tN), a(tAS), a(tRB)).over(1),
		rep("sort-on", ctxAll, tL, a(tRB), a(tAS)).over(1),
		rep("turtles-here", ctxTP, TypeTurtleset),
		rep("turtles-at", ctxTP, TypeTurtleset, a(tN), a(tN)),
		rep("turtles-on", ctxAll, TypeTurtleset, a(tAG|tAS)),
		rep("patch-here", ctxTurtle, TypePatch),
		rep("patch-ahead", ctxTurtle, TypePatch|TypeNobody, a(tN)),
		rep("patch-at", ctxTP, TypePatch|TypeNobody, a(tN), a(tN)),
		rep("patch-left-and-ahead", ctxTurtle, TypePatch|TypeNobody, a(tN), a(tN)),
		rep("patch-right-and-ahead", ctxTurtle, TypePatch|TypeNobody, a(tN), a(tN)),
		rep("patch-at-heading-and-distance", ctxTP, TypePatch|TypeNobody, a(tN), a(tN)),
		rep("neighbors", ctxTP, TypePatchset),
		rep("neighbors4", ctxTP, TypePatchset),
		rep("link-neighbors", ctxTurtle, TypeTurtleset),
		rep("in-link-neighbors", ctxTurtle, TypeTurtleset),
		rep("out-link-neighbors", ctxTurtle, TypeTurtleset),
		rep("link-neighbor?", ctxTurtle, tB, a(TypeTurtle)),
		rep("in-link-neighbor?", ctxTurtle, tB, a(TypeTurtle)),
		rep("out-link-neighbor?", ctxTurtle, tB, a(TypeTurtle)),
		rep("my-links", ctxTurtle, TypeLinkset),
		rep("my-in-links", ctxTurtle, TypeLinkset),
		rep("my-out-links", ctxTurtle, TypeLinkset),
		rep("link-with", ctxTurtle, TypeLink|TypeNobody, a(TypeTurtle)),
		rep("in-link-from", ctxTurtle, TypeLink|TypeNobody, a(TypeTurtle)),
		rep("out-link-to", ctxTurtle, TypeLink|TypeNobody, a(TypeTurtle)),
		rep("both-ends", ctxLink, TypeTurtleset),
		rep("other-end", ctxTL, TypeTurtle),
		rep("link-heading", ctxLink, tN),
		rep("link-length", ctxLink, tN),
		rep("can-move?", ctxTurtle, tB, a(tN)),
		rep("distance", ctxTP, tN, a(tAG)),
		rep("distancexy", ctxTP, tN, a(tN), a(tN)),
		rep("towards", ctxTP, tN, a(tAG)),
		rep("towardsxy", ctxTP, tN, a(tN), a(tN)),
		rep("dx", ctxTurtle, tN),
		rep("dy", ctxTurtle, tN),
		rep("is-agent?", ctxAll, tB, a(tW)),
		rep("is-agentset?", ctxAll, tB, a(tW)),
		rep("is-turtle?", ctxAll, tB, a(tW)),
		rep("is-patch?", ctxAll, tB, a(tW)),
		rep("is-link?", ctxAll, tB, a(tW)),
		rep("is-turtle-set?", ctxAll, tB, a(tW)),
		rep("is-patch-set?", ctxAll, tB, a(tW)),
		rep("is-link-set?", ctxAll, tB, a(tW)),
		rep("is-directed-link?", ctxAll, tB, a(tW)),
		rep("is-anonymous-command?", ctxAll, tB, a(tW)),
		rep("is-anonymous-reporter?", ctxAll, tB, a(tW)),
		rep("is-number?", ctxAll, tB, a(tW)),
		rep("is-string?", ctxAll, tB, a(tW)),
		rep("is-list?", ctxAll, tB, a(tW)),
		rep("is-boolean?", ctxAll, tB, a(tW)),
	}
}

func mathReporters() []*Primitive {
	n1 := func(name string) *Primitive { return rep(name, ctxAll, tN, a(tN)) }
	n2 := func(name string) *Primitive { return rep(name, ctxAll, tN, a(tN), a(tN)) }
	return []*Primitive{
		n1("abs"), n1("acos"), n1("asin"), n1("cos"), n1("sin"), n1("tan"),
		n1("exp"), n1("ln"), n1("sqrt"), n1("floor"), n1("ceiling"), n1("round"), n1("int"),
		n1("random"), n1("random-float"), n1("random-exponential"), n1("random-poisson"),
		n2("atan"), n2("log"), n2("precision"), n2("remainder"), n2("random-normal"),
		n2("random-gamma"), n2("subtract-headings"),
		rep("mean", ctxAll, tN, a(tL)),
		rep("median", ctxAll, tN, a(tL)),
		rep("max", ctxAll, tN, a(tL)),
		rep("min", ctxAll, tN, a(tL)),
		rep("sum", ctxAll, tN, a(tL)),
		rep("variance", ctxAll, tN, a(tL)),
		rep("standard-deviation", ctxAll, tN, a(tL)),
		rep("modes", ctxAll, tL, a(tL)),
		rep("new-seed", ctxAll, tN),
		rep("rgb", ctxAll, tL, a(tN), a(tN), a(tN)),
		rep("hsb", ctxAll, tL, a(tN), a(tN), a(tN)),
		rep("extract-rgb", ctxAll, tL, a(tN)),
		rep("extract-hsb", ctxAll, tL, a(tN|tL)),
		rep("approximate-rgb", ctxAll, tN, a(tN), a(tN), a(tN)),
		rep("approximate-hsb", ctxAll, tN, a(tN), a(tN), a(tN)),
		rep("scale-color", ctxAll, tN, a(tN), a(tN), a(tN), a(tN)),
		rep("shade-of?", ctxAll, tB, a(tN), a(tN)),
		rep("wrap-color", ctxAll, tN, a(tN)),
		rep("base-colors", ctxAll, tL),
		rep("not", ctxAll, tB, a(tB)),
	}
}

func listReporters() []*Primitive {
	return flatten(
		alias(rep("but-first", ctxAll, tL|tS, a(tL|tS)), "butfirst", "bf"),
		alias(rep("but-last", ctxAll, tL|tS, a(tL|tS)), "butlast", "bl"),
		alias(rep("sentence", ctxAll, tL, many(tW)).variadic(2, 0), "se"),
		[]*Primitive{
			rep("list", ctxAll, tL, many(tW)).variadic(2, 0),
			rep("word", ctxAll, tS, many(tW)).variadic(2, 0),
			rep("fput", ctxAll, tL, a(tW), a(tL)),
			rep("lput", ctxAll, tL, a(tW), a(tL)),
			rep("first", ctxAll, tW, a(tL|tS)),
			rep("last", ctxAll, tW, a(tL|tS)),
			rep("item", ctxAll, tW, a(tN), a(tL|tS)),
			rep("length", ctxAll, tN, a(tL|tS)),
			rep("empty?", ctxAll, tB, a(tL|tS)),
			rep("member?", ctxAll, tB, a(tW), a(tL|tS|tAS)),
			rep("position", ctxAll, tN|tB, a(tW), a(tL|tS)),
			rep("remove", ctxAll, tL|tS, a(tW), a(tL|tS)),
			rep("remove-item", ctxAll, tL|tS, a(tN), a(tL|tS)),
			rep("remove-duplicates", ctxAll, tL, a(tL)),
			rep("replace-item", ctxAll, tL|tS, a(tN), a(tL|tS), a(tW)),
			rep("insert-item", ctxAll, tL|tS, a(tN), a(tL|tS), a(tW)),
			rep("reverse", ctxAll, tL|tS, a(tL|tS)),
			rep("shuffle", ctxAll, tL, a(tL)),
			rep("sort", ctxAll, tL, a(tL|tAS)),
			rep("sort-by", ctxAll, tL, a(tREP), a(tL|tAS)),
			rep("sublist", ctxAll, tL, a(tL), a(tN), a(tN)),
			rep("substring", ctxAll, tS, a(tS), a(tN), a(tN)),
			rep("n-values", ctxAll, tL, a(tN), a(tREP)),
			rep("filter", ctxAll, tL, a(tREP), a(tL)),
			rep("reduce", ctxAll, tW, a(tREP), a(tL)),
			rep("map", ctxAll, tL, a(tREP), many(tL)).variadic(2, 2),
			rep("range", ctxAll, tL, many(tN)).variadic(1, 1),
			rep("read-from-string", ctxAll, tW, a(tS)),
			rep("runresult", ctxAll, tW, a(tS|tREP), Arg{Types: tW, CanRepeat: true, Optional: true}).variadic(1, 1),
			rep("ifelse-value", ctxAll, tW, a(tB), a(tRB), many(tB|tRB)).variadic(3, 2),
		},
	)
}

func worldReporters() []*Primitive {
	return []*Primitive{
		rep("min-pxcor", ctxAll, tN),
		rep("max-pxcor", ctxAll, tN),
		rep("min-pycor", ctxAll, tN),
		rep("max-pycor", ctxAll, tN),
		rep("world-width", ctxAll, tN),
		rep("world-height", ctxAll, tN),
		rep("patch-size", ctxAll, tN),
		rep("random-xcor", ctxAll, tN),
		rep("random-ycor", ctxAll, tN),
		rep("random-pxcor", ctxAll, tN),
		rep("random-pycor", ctxAll, tN),
		rep("ticks", ctxAll, tN),
		rep("timer", ctxAll, tN),
		rep("date-and-time", ctxAll, tS),
		rep("netlogo-version", ctxAll, tS),
		rep("netlogo-web?", ctxAll, tB),
		rep("behaviorspace-run-number", ctxAll, tN),
		rep("behaviorspace-experiment-name", ctxAll, tS),
		rep("mouse-down?", ctxAll, tB),
		rep("mouse-inside?", ctxAll, tB),
		rep("mouse-xcor", ctxAll, tN),
		rep("mouse-ycor", ctxAll, tN),
		rep("shapes", ctxAll, tL),
		rep("link-shapes", ctxAll, tL),
		rep("user-input", ctxAll, tS, a(tW)),
		rep("user-yes-or-no?", ctxAll, tB, a(tW)),
		rep("user-one-of", ctxAll, tW, a(tW), a(tL)),
		rep("error-message", ctxAll, tS),
	}
}

func operators() []*Primitive {
	arith := func(name string, prec int) *Primitive { return infix(name, prec, tN, tN, a(tN)) }
	cmp := func(name string, prec int) *Primitive { return infix(name, prec, tW, tB, a(tW)) }
	logic := func(name string) *Primitive { return infix(name, PrecBoolean, tB, tB, a(tB)) }
	return []*Primitive{
		arith("+", PrecAdditive),
		arith("-", PrecAdditive),
		arith("*", PrecMultiply),
		arith("/", PrecMultiply),
		arith("mod", PrecMultiply),
		arith("^", PrecPower),
		cmp("=", PrecEquality),
		cmp("!=", PrecEquality),
		cmp("<", PrecComparison),
		cmp(">", PrecComparison),
		cmp("<=", PrecComparison),
		cmp(">=", PrecComparison),
		logic("and"),
		logic("or"),
		logic("xor"),
		infix("of", PrecOf, tRB, tW, a(tAG|tAS)).over(0).rassoc(),
		infix("with", PrecWith, tAS, tAS, a(tRB)).over(LeftArg),
		infix("with-max", PrecWith, tAS, tAS, a(tRB)).over(LeftArg),
		infix("with-min", PrecWith, tAS, tAS, a(tRB)).over(LeftArg),
		infix("in-radius", PrecWith, tAS, tAS, a(tN)).in(ctxTP).passes(LeftArg),
		infix("in-cone", PrecWith, tAS, tAS, a(tN), a(tN)).in(ctxTurtle).passes(LeftArg),
		infix("at-points", PrecWith, tAS, tAS, a(tL)).in(ctxOTP).passes(LeftArg),
	}
}

// breedPrototypes are generic stand-ins for breed templates with no
// same-named core primitive.
func breedPrototypes() []*Primitive {
	hatch := *cmd("hatch", ctxTurtle, a(tN), opt(tCB)).fixed(ctxTurtle)
	hatch.Name = "hatch-turtles"
	sprout := *cmd("sprout", ctxPatch, a(tN), opt(tCB)).fixed(ctxTurtle)
	sprout.Name = "sprout-turtles"
	return []*Primitive{
		&hatch,
		&sprout,
		cmd("turtles-own", ctxAll),
		cmd("patches-own", ctxAll),
		cmd("links-own", ctxAll),
	}
}
