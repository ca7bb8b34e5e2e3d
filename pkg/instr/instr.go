// Package instr implements the instruction generator: the stateful emitter
// that the type-directed emitter (pkg/splitcode) drives to build a linear
// parsing-instruction program, plus the instruction alphabet itself.
//
// Each instruction is opaque beyond its opcode and operand; the generator
// never interprets what an operand means, only where labels resolve to.
// One Generator is used per instructionsFor call and is discarded
// afterward — it holds no state that outlives a single call.
package instr

import "github.com/kristofer/avail/pkg/splitast"

// Opcode is one operation in the parsing-instruction alphabet.
type Opcode int

const (
	ParsePart Opcode = iota
	ParsePartCaseInsensitively
	ParseArgument
	ParseArgumentInModuleScope
	ParseVariableReference
	ParseTopValuedArgument
	ParseAnyRawToken
	ParseRawKeywordToken
	ParseRawStringLiteralToken
	ParseRawWholeNumberLiteralToken
	CheckArgument
	TypeCheckArgument
	Convert
	NewList
	AppendArgument
	PermuteList
	Branch
	Jump
	SaveParsePosition
	EnsureParseProgress
	DiscardSavedParsePosition
	CheckAtLeast
	CheckAtMost
	PushTrue
	PushFalse
	PushIntegerLiteral
	PrepareToRunPrefixFunction
	RunPrefixFunction
)

var opcodeNames = [...]string{
	"PARSE_PART",
	"PARSE_PART_CASE_INSENSITIVELY",
	"PARSE_ARGUMENT",
	"PARSE_ARGUMENT_IN_MODULE_SCOPE",
	"PARSE_VARIABLE_REFERENCE",
	"PARSE_TOP_VALUED_ARGUMENT",
	"PARSE_ANY_RAW_TOKEN",
	"PARSE_RAW_KEYWORD_TOKEN",
	"PARSE_RAW_STRING_LITERAL_TOKEN",
	"PARSE_RAW_WHOLE_NUMBER_LITERAL_TOKEN",
	"CHECK_ARGUMENT",
	"TYPE_CHECK_ARGUMENT",
	"CONVERT",
	"NEW_LIST",
	"APPEND_ARGUMENT",
	"PERMUTE_LIST",
	"BRANCH",
	"JUMP",
	"SAVE_PARSE_POSITION",
	"ENSURE_PARSE_PROGRESS",
	"DISCARD_SAVED_PARSE_POSITION",
	"CHECK_AT_LEAST",
	"CHECK_AT_MOST",
	"PUSH_TRUE",
	"PUSH_FALSE",
	"PUSH_INTEGER_LITERAL",
	"PREPARE_TO_RUN_PREFIX_FUNCTION",
	"RUN_PREFIX_FUNCTION",
}

// String gives the opcode's canonical uppercase name, used by disassembly
// output and error messages.
func (op Opcode) String() string {
	if int(op) < 0 || int(op) >= len(opcodeNames) {
		return "UNKNOWN_OPCODE"
	}
	return opcodeNames[op]
}

// ConversionRule is Convert's operand: which runtime conversion to apply
// to the value on top of the parse stack.
type ConversionRule int

const (
	EvaluateExpression ConversionRule = iota
	ListToSize
)

// Instruction is one opcode plus its operand. The operand's meaning is
// opcode-specific (an argument index, a branch target, a permutation or
// type-check registry index, a literal value, ...).
type Instruction struct {
	Op      Opcode
	Operand int
}

// Label is an as-yet-unresolved or resolved branch target managed by a
// Generator. It is only valid for the Generator that created it.
type Label struct{ id int }

type labelRecord struct {
	bound   bool
	target  int
	pending []int // instruction indices whose Operand needs patching
}

// Generator accumulates an instruction program and its aligned origin
// list for a single emission (one pkg/splitcode.Emit call). It
// is not safe for concurrent use by multiple goroutines — callers create a
// fresh Generator per call.
type Generator struct {
	instructions []Instruction
	origins      []splitast.Expression
	labels       []labelRecord

	caseInsensitive    bool
	partialListsCount  int
}

// New creates an empty Generator.
func New() *Generator { return &Generator{} }

// Emit appends an instruction attributed to origin exactly as given; use
// EmitParsePart to have the case-insensitivity flag select the opcode.
func (g *Generator) Emit(origin splitast.Expression, op Opcode, operand int) {
	g.instructions = append(g.instructions, Instruction{Op: op, Operand: operand})
	g.origins = append(g.origins, origin)
}

// EmitParsePart emits ParsePart or ParsePartCaseInsensitively depending on
// the generator's current case-insensitivity flag.
func (g *Generator) EmitParsePart(origin splitast.Expression, tokenIndex int) {
	if g.caseInsensitive {
		g.Emit(origin, ParsePartCaseInsensitively, tokenIndex)
	} else {
		g.Emit(origin, ParsePart, tokenIndex)
	}
}

// NewLabel allocates a fresh, initially-unbound label.
func (g *Generator) NewLabel() *Label {
	g.labels = append(g.labels, labelRecord{})
	return &Label{id: len(g.labels) - 1}
}

// EmitBranch emits a Branch or Jump instruction targeting label. If label
// is already bound its target is used immediately; otherwise the
// instruction is recorded as a pending forward reference and patched when
// BindLabel is eventually called.
func (g *Generator) EmitBranch(origin splitast.Expression, op Opcode, label *Label) {
	pc := len(g.instructions)
	g.instructions = append(g.instructions, Instruction{Op: op})
	g.origins = append(g.origins, origin)

	rec := &g.labels[label.id]
	if rec.bound {
		g.instructions[pc].Operand = rec.target
	} else {
		rec.pending = append(rec.pending, pc)
	}
}

// BindLabel binds label to the generator's current position, resolving
// every pending forward reference to that label.
func (g *Generator) BindLabel(label *Label) {
	rec := &g.labels[label.id]
	rec.bound = true
	rec.target = len(g.instructions)
	for _, pc := range rec.pending {
		g.instructions[pc].Operand = rec.target
	}
	rec.pending = nil
}

// PushCaseInsensitive saves the current case-insensitivity flag and sets a
// new one, returning a restore function.
func (g *Generator) PushCaseInsensitive(insensitive bool) (restore func()) {
	prev := g.caseInsensitive
	g.caseInsensitive = insensitive
	return func() { g.caseInsensitive = prev }
}

// EnterPartialList increments the nesting counter passed to
// PrepareToRunPrefixFunction so the runtime parser knows how many
// in-progress lists must be finalized before a prefix function runs.
func (g *Generator) EnterPartialList() { g.partialListsCount++ }

// ExitPartialList undoes EnterPartialList.
func (g *Generator) ExitPartialList() { g.partialListsCount-- }

// PartialListsCount returns the current nesting depth.
func (g *Generator) PartialListsCount() int { return g.partialListsCount }

// Result returns the finished instruction program and its aligned origin
// list. It is only meaningful once emission has completed.
func (g *Generator) Result() ([]Instruction, []splitast.Expression) {
	return g.instructions, g.origins
}
