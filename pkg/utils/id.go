package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 32 位十六进制随机 ID
func NewID() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }

// NewAuthCode 成员凭证
func NewAuthCode() string { return NewID() }

// NewInvitationCode 房间邀请码（较短，便于分享）
func NewInvitationCode() string { return strings.ToUpper(NewID()[:12]) }
