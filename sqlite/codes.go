package sqlite

// Code is a primitive status code. The set is closed: Quill programs
// branch on these numeric values, so they are wire-stable.
type Code int

const (
	CodeOK              Code = 1
	CodeOpenError       Code = 2
	CodeExecError       Code = 3
	CodePrepareError    Code = 4
	CodeBindError       Code = 5
	CodeStepError       Code = 6
	CodeInvalidArgument Code = 7
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeOpenError:
		return "OPEN_ERROR"
	case CodeExecError:
		return "EXEC_ERROR"
	case CodePrepareError:
		return "PREPARE_ERROR"
	case CodeBindError:
		return "BIND_ERROR"
	case CodeStepError:
		return "STEP_ERROR"
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	default:
		return "UNKNOWN"
	}
}

// ColType is the normalized column type reported by column_type.
// The numbering is independent of the native engine's and is part of
// the primitive contract: Quill programs branch on these exact values.
type ColType int64

const (
	TypeInteger ColType = 1
	TypeFloat   ColType = 2
	TypeText    ColType = 3
	TypeBlob    ColType = 4
	TypeNull    ColType = 5
)

func (t ColType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeText:
		return "TEXT"
	case TypeBlob:
		return "BLOB"
	case TypeNull:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}
