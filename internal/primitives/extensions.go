package primitives

func extensionPrimitives() []*Primitive {
	return flatten(
		tableExtension(),
		arrayExtension(),
		csvExtension(),
		rndExtension(),
		nwExtension(),
		stringExtension(),
		matrixExtension(),
	)
}

func tableExtension() []*Primitive {
	const e = "table"
	return []*Primitive{
		rep("make", ctxAll, tW).ext(e),
		rep("from-list", ctxAll, tW, a(tL)).ext(e),
		rep("to-list", ctxAll, tL, a(tW)).ext(e),
		rep("get", ctxAll, tW, a(tW), a(tW)).ext(e),
		rep("get-or-default", ctxAll, tW, a(tW), a(tW), a(tW)).ext(e),
		rep("has-key?", ctxAll, tB, a(tW), a(tW)).ext(e),
		rep("keys", ctxAll, tL, a(tW)).ext(e),
		rep("values", ctxAll, tL, a(tW)).ext(e),
		rep("length", ctxAll, tN, a(tW)).ext(e),
		rep("counts", ctxAll, tW, a(tL)).ext(e),
		rep("group-items", ctxAll, tW, a(tL), a(tREP)).ext(e),
		cmd("put", ctxAll, a(tW), a(tW), a(tW)).ext(e),
		cmd("remove", ctxAll, a(tW), a(tW)).ext(e),
		cmd("clear", ctxAll, a(tW)).ext(e),
	}
}

func arrayExtension() []*Primitive {
	const e = "array"
	return []*Primitive{
		rep("from-list", ctxAll, tW, a(tL)).ext(e),
		rep("to-list", ctxAll, tL, a(tW)).ext(e),
		rep("item", ctxAll, tW, a(tW), a(tN)).ext(e),
		rep("length", ctxAll, tN, a(tW)).ext(e),
		cmd("set", ctxAll, a(tW), a(tN), a(tW)).ext(e),
	}
}

func csvExtension() []*Primitive {
	const e = "csv"
	return []*Primitive{
		rep("from-file", ctxAll, tL, a(tS)).ext(e),
		rep("from-row", ctxAll, tL, a(tS)).ext(e),
		rep("from-string", ctxAll, tL, a(tS)).ext(e),
		rep("to-row", ctxAll, tS, a(tL)).ext(e),
		rep("to-string", ctxAll, tS, a(tL)).ext(e),
		cmd("to-file", ctxAll, a(tS), a(tL)).ext(e),
	}
}

func rndExtension() []*Primitive {
	const e = "rnd"
	return []*Primitive{
		rep("weighted-one-of", ctxAll, tAG|TypeNobody, a(tAS), a(tRB)).over(0).ext(e),
		rep("weighted-n-of", ctxAll, tAS, a(tN), a(tAS), a(tRB)).over(1).ext(e),
		rep("weighted-one-of-list", ctxAll, tW, a(tL), a(tREP)).ext(e),
		rep("weighted-n-of-list", ctxAll, tL, a(tN), a(tL), a(tREP)).ext(e),
	}
}

func nwExtension() []*Primitive {
	const e = "nw"
	return []*Primitive{
		cmd("set-context", ctxObserver, a(TypeTurtleset), a(TypeLinkset)).ext(e),
		rep("get-context", ctxAll, tL).ext(e),
		rep("distance-to", ctxTurtle, tN|tB, a(TypeTurtle)).ext(e),
		rep("path-to", ctxTurtle, tL|tB, a(TypeTurtle)).ext(e),
		rep("turtles-in-radius", ctxTurtle, TypeTurtleset, a(tN)).ext(e),
		rep("betweenness-centrality", ctxTurtle, tN).ext(e),
		rep("closeness-centrality", ctxTurtle, tN).ext(e),
		rep("eigenvector-centrality", ctxTurtle, tN|tB).ext(e),
		rep("clustering-coefficient", ctxTurtle, tN).ext(e),
		rep("mean-path-length", ctxAll, tN|tB).ext(e),
	}
}

func stringExtension() []*Primitive {
	const e = "string"
	return []*Primitive{
		rep("lower-case", ctxAll, tS, a(tS)).ext(e),
		rep("upper-case", ctxAll, tS, a(tS)).ext(e),
		rep("trim", ctxAll, tS, a(tS)).ext(e),
		rep("split-on", ctxAll, tL, a(tS), a(tS)).ext(e),
		rep("starts-with?", ctxAll, tB, a(tS), a(tS)).ext(e),
		rep("ends-with?", ctxAll, tB, a(tS), a(tS)).ext(e),
	}
}

func matrixExtension() []*Primitive {
	const e = "matrix"
	return []*Primitive{
		rep("make-constant", ctxAll, tW, a(tN), a(tN), a(tN)).ext(e),
		rep("make-identity", ctxAll, tW, a(tN)).ext(e),
		rep("from-row-list", ctxAll, tW, a(tL)).ext(e),
		rep("to-row-list", ctxAll, tL, a(tW)).ext(e),
		rep("get", ctxAll, tN, a(tW), a(tN), a(tN)).ext(e),
		rep("dimensions", ctxAll, tL, a(tW)).ext(e),
		cmd("set", ctxAll, a(tW), a(tN), a(tN), a(tN)).ext(e),
	}
}
