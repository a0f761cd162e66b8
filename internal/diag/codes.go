package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Семантические
	SemaInfo                          Code = 3000
	SemaNotVariable                   Code = 3001
	SemaNotRoutine                    Code = 3002
	SemaNotCoroutine                  Code = 3003
	SemaMultipleDefs                  Code = 3004
	SemaPathNotFound                  Code = 3005
	SemaPathNotValid                  Code = 3006
	SemaNotDefined                    Code = 3007
	SemaEmptyPath                     Code = 3008
	SemaAlreadyDeclared               Code = 3009
	SemaPathTooSuper                  Code = 3010
	SemaArrayInvalidSize              Code = 3020
	SemaArrayInconsistentElementTypes Code = 3021
	SemaArrayIndexingInvalidType      Code = 3022
	SemaArrayIndexingInvalidIndexType Code = 3023
	SemaBindExpected                  Code = 3030
	SemaVariableNotMutable            Code = 3031
	SemaBindMismatch                  Code = 3032
	SemaYieldExpected                 Code = 3033
	SemaYieldInvalidLocation          Code = 3034
	SemaReturnExpected                Code = 3035
	SemaReturnInvalidLocation         Code = 3036
	SemaMemberAccessInvalidRootType   Code = 3040
	SemaMemberAccessMemberNotFound    Code = 3041
	SemaIfExprMismatchArms            Code = 3042
	SemaCondExpectedBool              Code = 3043
	SemaWhileInvalidType              Code = 3044
	SemaWhileCondInvalidType          Code = 3045
	SemaYieldInvalidType              Code = 3046
	SemaExpectedSignedInteger         Code = 3047
	SemaExpectedBool                  Code = 3048
	SemaOpExpected                    Code = 3049
	SemaRoutineCallWrongNumParams     Code = 3050
	SemaFunctionParamsNotEnough       Code = 3051
	SemaRoutineParamTypeMismatch      Code = 3052
	SemaRoutineCallInvalidTarget      Code = 3053
	SemaStructExprWrongNumParams      Code = 3060
	SemaStructExprMemberNotFound      Code = 3061
	SemaStructExprFieldTypeMismatch   Code = 3062
	SemaInvalidStructure              Code = 3063
	SemaMainFnInvalidType             Code = 3070
	SemaMainFnInvalidParams           Code = 3071
	SemaExternInvalidParamType        Code = 3072
	SemaInvalidIdentifierType         Code = 3073

	// MIR
	MirInfo        Code = 4000
	MirUnsupported Code = 4001
	MirInvalid     Code = 4002

	// Драйвер и ввод-вывод
	DrvInfo         Code = 5000
	DrvReadUnit     Code = 5001
	DrvDecodeUnit   Code = 5002
	DrvConfig       Code = 5003
	DrvInternal     Code = 5004
	DrvCacheFailure Code = 5005
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                       "Unknown error",
		SemaInfo:                          "Semantic information",
		SemaNotVariable:                   "Not a variable",
		SemaNotRoutine:                    "Not a routine",
		SemaNotCoroutine:                  "Not a coroutine",
		SemaMultipleDefs:                  "Item defined multiple times",
		SemaPathNotFound:                  "Path not found",
		SemaPathNotValid:                  "Path is not valid",
		SemaNotDefined:                    "Name is not defined",
		SemaEmptyPath:                     "Empty path",
		SemaAlreadyDeclared:               "Name already declared in this scope",
		SemaPathTooSuper:                  "Path climbs above root",
		SemaArrayInvalidSize:              "Invalid array size",
		SemaArrayInconsistentElementTypes: "Inconsistent array element types",
		SemaArrayIndexingInvalidType:      "Indexing a non-array value",
		SemaArrayIndexingInvalidIndexType: "Array index must be integral",
		SemaBindExpected:                  "Bind type mismatch",
		SemaVariableNotMutable:            "Variable is not mutable",
		SemaBindMismatch:                  "Assignment type mismatch",
		SemaYieldExpected:                 "Yield return type mismatch",
		SemaYieldInvalidLocation:          "Yield return outside of a coroutine",
		SemaReturnExpected:                "Return type mismatch",
		SemaReturnInvalidLocation:         "Return outside of a routine",
		SemaMemberAccessInvalidRootType:   "Member access on a non-structure",
		SemaMemberAccessMemberNotFound:    "Member not found",
		SemaIfExprMismatchArms:            "If arms have different types",
		SemaCondExpectedBool:              "Condition must be bool",
		SemaWhileInvalidType:              "While body must be unit",
		SemaWhileCondInvalidType:          "While condition must be bool",
		SemaYieldInvalidType:              "Yield expects a coroutine",
		SemaExpectedSignedInteger:         "Expected signed integer",
		SemaExpectedBool:                  "Expected bool",
		SemaOpExpected:                    "Invalid operand types",
		SemaRoutineCallWrongNumParams:     "Wrong number of arguments",
		SemaFunctionParamsNotEnough:       "Not enough arguments for variadic routine",
		SemaRoutineParamTypeMismatch:      "Argument type mismatch",
		SemaRoutineCallInvalidTarget:      "Invalid call target",
		SemaStructExprWrongNumParams:      "Wrong number of struct fields",
		SemaStructExprMemberNotFound:      "Struct field not found",
		SemaStructExprFieldTypeMismatch:   "Struct field type mismatch",
		SemaInvalidStructure:              "Not a structure",
		SemaMainFnInvalidType:             "Invalid entry point type",
		SemaMainFnInvalidParams:           "Entry point takes parameters",
		SemaExternInvalidParamType:        "Invalid extern parameter type",
		SemaInvalidIdentifierType:         "Invalid type for identifier",
		MirInfo:                           "MIR information",
		MirUnsupported:                    "Construct cannot be lowered to MIR",
		MirInvalid:                        "MIR validation failed",
		DrvInfo:                           "Driver information",
		DrvReadUnit:                       "Failed to read unit",
		DrvDecodeUnit:                     "Failed to decode unit",
		DrvConfig:                         "Invalid configuration",
		DrvInternal:                       "Internal compiler error",
		DrvCacheFailure:                   "Cache failure",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("MIR%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("DRV%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
