package response

import (
	"docuflow/logic/extract"
	"docuflow/service"
	"docuflow/types"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code int         `json:"code"` // 0:成功, -1:失败
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

// Fail 参数类错误，HTTP 400
func Fail(c *gin.Context, msg string) {
	FailWithStatus(c, http.StatusBadRequest, msg)
}

func FailWithStatus(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{
		Code: -1,
		Msg:  msg,
	})
}

// Error 把领域错误映射成状态码
func Error(c *gin.Context, err error) {
	FailWithStatus(c, StatusOf(err), err.Error())
}

// StatusOf maps domain errors to HTTP status codes. Order matters: a wrapped
// vendor error may also carry ErrNotFound.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrVendorRequired),
		errors.Is(err, types.ErrInvalidDate),
		errors.Is(err, types.ErrInvalidInput),
		errors.Is(err, types.ErrUnsupportedType),
		errors.Is(err, extract.ErrVisionRequired):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidTransition),
		errors.Is(err, types.ErrAlreadyProcessing):
		return http.StatusConflict
	case errors.Is(err, types.ErrPollTimeout):
		return http.StatusRequestTimeout
	case errors.Is(err, types.ErrUnparseableResponse),
		errors.Is(err, types.ErrInvalidDraft):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrSearchDisabled),
		errors.Is(err, service.ErrDispatcherClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RPCSuccess / RPCError 兼容原有 functions/v1 接口的返回格式
func RPCSuccess(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

func RPCError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
