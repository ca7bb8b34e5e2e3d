// Package errcode enumerates the domain error codes produced while lexing,
// parsing or signature-checking a message name.
//
// A code is opaque outside this package: callers compare it with ==, never
// parse the string form.
package errcode

// Code identifies a specific way a message name or signature was rejected.
type Code int

const (
	_ Code = iota

	// Signature errors (pkg/sigcheck).
	IncorrectArgumentType
	IncorrectNumberOfArguments
	IncorrectTypeForGroup
	IncorrectTypeForComplexGroup
	IncorrectTypeForCountingGroup
	IncorrectTypeForBooleanGroup
	IncorrectTypeForNumberedChoice

	// Malformed-name errors (pkg/namelexer, pkg/nameparser).
	IncorrectUseOfDoubleDagger
	UnbalancedGuillemets
	MethodNameIsNotCanonical
	AlternativeMustNotContainArguments
	OctothorpMustFollowASimpleGroupOrEllipsis
	DollarSignMustFollowAnEllipsis
	QuestionMarkMustFollowASimpleGroup
	TildeMustNotFollowArgument
	VerticalBarMustSeparateTokensOrSimpleGroups
	ExclamationMarkMustFollowAnAlternationGroup
	DoubleQuestionMarkMustFollowATokenOrSimpleGroup
	CaseInsensitiveExpressionCanonization
	ExpectedOperatorAfterBackquote
	UpArrowMustFollowArgument
	InconsistentArgumentReordering
)

// String gives a stable, human-readable name for the code; it is a
// diagnostic aid only, never parsed back.
func (c Code) String() string {
	switch c {
	case IncorrectArgumentType:
		return "INCORRECT_ARGUMENT_TYPE"
	case IncorrectNumberOfArguments:
		return "INCORRECT_NUMBER_OF_ARGUMENTS"
	case IncorrectTypeForGroup:
		return "INCORRECT_TYPE_FOR_GROUP"
	case IncorrectTypeForComplexGroup:
		return "INCORRECT_TYPE_FOR_COMPLEX_GROUP"
	case IncorrectTypeForCountingGroup:
		return "INCORRECT_TYPE_FOR_COUNTING_GROUP"
	case IncorrectTypeForBooleanGroup:
		return "INCORRECT_TYPE_FOR_BOOLEAN_GROUP"
	case IncorrectTypeForNumberedChoice:
		return "INCORRECT_TYPE_FOR_NUMBERED_CHOICE"
	case IncorrectUseOfDoubleDagger:
		return "INCORRECT_USE_OF_DOUBLE_DAGGER"
	case UnbalancedGuillemets:
		return "UNBALANCED_GUILLEMETS"
	case MethodNameIsNotCanonical:
		return "METHOD_NAME_IS_NOT_CANONICAL"
	case AlternativeMustNotContainArguments:
		return "ALTERNATIVE_MUST_NOT_CONTAIN_ARGUMENTS"
	case OctothorpMustFollowASimpleGroupOrEllipsis:
		return "OCTOTHORP_MUST_FOLLOW_A_SIMPLE_GROUP_OR_ELLIPSIS"
	case DollarSignMustFollowAnEllipsis:
		return "DOLLAR_SIGN_MUST_FOLLOW_AN_ELLIPSIS"
	case QuestionMarkMustFollowASimpleGroup:
		return "QUESTION_MARK_MUST_FOLLOW_A_SIMPLE_GROUP"
	case TildeMustNotFollowArgument:
		return "TILDE_MUST_NOT_FOLLOW_ARGUMENT"
	case VerticalBarMustSeparateTokensOrSimpleGroups:
		return "VERTICAL_BAR_MUST_SEPARATE_TOKENS_OR_SIMPLE_GROUPS"
	case ExclamationMarkMustFollowAnAlternationGroup:
		return "EXCLAMATION_MARK_MUST_FOLLOW_AN_ALTERNATION_GROUP"
	case DoubleQuestionMarkMustFollowATokenOrSimpleGroup:
		return "DOUBLE_QUESTION_MARK_MUST_FOLLOW_A_TOKEN_OR_SIMPLE_GROUP"
	case CaseInsensitiveExpressionCanonization:
		return "CASE_INSENSITIVE_EXPRESSION_CANONIZATION"
	case ExpectedOperatorAfterBackquote:
		return "EXPECTED_OPERATOR_AFTER_BACKQUOTE"
	case UpArrowMustFollowArgument:
		return "UP_ARROW_MUST_FOLLOW_ARGUMENT"
	case InconsistentArgumentReordering:
		return "INCONSISTENT_ARGUMENT_REORDERING"
	default:
		return "UNKNOWN_ERROR_CODE"
	}
}
