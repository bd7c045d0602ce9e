package utils

import "github.com/gin-gonic/gin"

// SuccessResponse is the envelope every successful API call answers with.
// The message is what the storefront shows to the shopper.
func SuccessResponse(message string, data interface{}) gin.H {
	res := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		res["data"] = data
	}
	return res
}

func ErrorResponse(message string) gin.H {
	return gin.H{
		"success": false,
		"error":   message,
	}
}
