package xerrors

// 数值计算相关的业务错误码。每次调用返回新实例，避免共享错误被 WithContext 污染。
const (
	CodeNilDiscretization = 400101
	CodeParameterArity    = 400102
	CodeEmptyGrid         = 400103
	CodeUnorderedGrid     = 400104
	CodeInvalidGridStep   = 400105
	CodeMatrixShape       = 400106
	CodeUnknownModel      = 400107
	CodeIndexOutOfRange   = 416001
	CodeEvaluationAborted = 499001
)

// NilDiscretization 时间离散化协作方缺失。
func NilDiscretization(name string) *Error {
	return New(ErrInvalidArg, CodeNilDiscretization, "time discretization is nil", name, nil).
		WithContext("discretization", name)
}

// ParameterArity 参数向量长度与模型期望不符。
func ParameterArity(want, got int) *Error {
	return New(ErrInvalidArg, CodeParameterArity, "parameter vector length mismatch", "", nil).
		WithDetail("expected %d values, got %d", want, got).
		WithContext("expected", want).
		WithContext("actual", got)
}

// IndexOutOfRange 索引超出集合范围。
func IndexOutOfRange(index, length int) *Error {
	return New(ErrOutOfRange, CodeIndexOutOfRange, "index out of range", "", nil).
		WithDetail("index %d not in [0, %d)", index, length).
		WithContext("index", index).
		WithContext("length", length)
}

// EvaluationAborted 批量求值被上下文取消。
func EvaluationAborted(cause error) *Error {
	return New(ErrCanceled, CodeEvaluationAborted, "volatility evaluation aborted", "", cause)
}
