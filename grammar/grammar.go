package grammar

// Participle AST for the textual Bril form:
//
//	@main(cond: bool): int {
//	.entry:
//	  one: int = const 1;
//	  br cond .then .else;
//	  ...
//	}
//
// Labels carry a leading dot, function references a leading at-sign.

type Program struct {
	Functions []*Function `@@*`
}

type Function struct {
	Name   string   `@Func`
	Params []*Param `("(" (@@ ("," @@)*)? ")")?`
	Type   string   `(":" @Ident)?`
	Lines  []*Line  `"{" @@* "}"`
}

type Param struct {
	Name string `@Ident ":"`
	Type string `@Ident`
}

type Line struct {
	Label *LabelDecl `  @@`
	Instr *Instr     `| @@`
}

type LabelDecl struct {
	Name string `@Label ":"`
}

type Instr struct {
	Assign   *Assign    `(@@ "=")?`
	Op       string     `@Ident`
	Operands []*Operand `@@* ";"`
}

type Assign struct {
	Dest string `@Ident ":"`
	Type string `@Ident`
}

type Operand struct {
	Func    *string `  @Func`
	Label   *string `| @Label`
	Integer *string `| @Integer`
	Ident   *string `| @Ident`
}
