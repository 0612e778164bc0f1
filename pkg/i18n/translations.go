package i18n

// translations maps message key → language code → format string.
//
// Supported languages: en (English), zh-CN (Simplified Chinese),
// zh-TW (Traditional Chinese).
var translations = map[string]map[string]string{

	// ─── Request validation ─────────────────────────────────────────────────
	"error.INVALID_REQUEST": {
		"en":    "The translation request is invalid",
		"zh-CN": "翻译请求无效",
		"zh-TW": "翻譯請求無效",
	},
	"error.MESSAGE_NOT_FOUND": {
		"en":    "Message not found",
		"zh-CN": "未找到该消息",
		"zh-TW": "找不到該訊息",
	},
	"error.UNAUTHORIZED": {
		"en":    "Authentication required",
		"zh-CN": "需要登录",
		"zh-TW": "需要登入",
	},

	// ─── Provider failures ──────────────────────────────────────────────────
	"error.INVALID_INPUT": {
		"en":    "The text or language pair cannot be translated",
		"zh-CN": "该文本或语言组合无法翻译",
		"zh-TW": "該文字或語言組合無法翻譯",
	},
	"error.RATE_LIMIT": {
		"en":    "Too many translation requests, please wait and try again",
		"zh-CN": "翻译请求过多，请稍后再试",
		"zh-TW": "翻譯請求過多，請稍後再試",
	},
	"error.SERVICE_UNAVAILABLE": {
		"en":    "The translation service is temporarily unavailable",
		"zh-CN": "翻译服务暂时不可用",
		"zh-TW": "翻譯服務暫時無法使用",
	},
	"error.NETWORK_ERROR": {
		"en":    "Could not reach the translation service",
		"zh-CN": "无法连接翻译服务",
		"zh-TW": "無法連線至翻譯服務",
	},
	"error.INVALID_RESPONSE": {
		"en":    "The translation service returned an invalid response",
		"zh-CN": "翻译服务返回了无效的响应",
		"zh-TW": "翻譯服務回傳了無效的回應",
	},
	"error.TRANSLATION_FAILED": {
		"en":    "Translation failed",
		"zh-CN": "翻译失败",
		"zh-TW": "翻譯失敗",
	},

	// ─── Client retry controller ────────────────────────────────────────────
	"error.NOT_FOUND": {
		"en":    "This message is no longer available",
		"zh-CN": "该消息已不存在",
		"zh-TW": "該訊息已不存在",
	},
	"error.MAX_RETRIES": {
		"en":    "Translation is still failing, please try again later",
		"zh-CN": "翻译仍然失败，请稍后再试",
		"zh-TW": "翻譯仍然失敗，請稍後再試",
	},
}
