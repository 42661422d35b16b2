package conn

import "codeberg.org/mutker/meteostationd/internal/errors"

const (
	// Link errors
	ErrLinkJoinFailed  = errors.ErrorCode("link_join_failed")
	ErrLinkLeaveFailed = errors.ErrorCode("link_leave_failed")
	ErrLinkTimeout     = errors.ErrorCode("link_connect_timeout")

	// Session errors
	ErrSessionExhausted = errors.ErrorCode("session_retries_exhausted")
	ErrSessionDown      = errors.ErrorCode("session_not_connected")
	ErrPublishFailed    = errors.ErrorCode("session_publish_failed")
	ErrConnectTimeout   = errors.ErrorCode("session_connect_timeout")
)
