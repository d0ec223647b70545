package common

const (
	KEY_ANALYSIS_RESULT = "analysis_result:%d"
	KEY_VISION_MODELS   = "vision_models:%s"
)

const (
	SIGNAL_BUY   = "BUY"
	SIGNAL_SELL  = "SELL"
	SIGNAL_WAIT  = "WAIT"
	SIGNAL_HOLD  = "HOLD"
	SIGNAL_ERROR = "ERROR"
)

const (
	DIRECTION_BUY  = "BUY"
	DIRECTION_SELL = "SELL"
)

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)
