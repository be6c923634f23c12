package domain

import (
	"context"
	"fmt"
)

type contextKey string

const ctxUserInfo contextKey = "userInfo"

const (
	CtxSystemAdminId = "_PC_SYS_ADMIN_"
	CtxUnknownUserId = "_PC_SYS_UNKNOWN_"
)

// ContextUserInfo carries the acting user through a request context.
type ContextUserInfo struct {
	Id      UserIdentifier
	IsAdmin bool
}

func (u *ContextUserInfo) String() string {
	return fmt.Sprintf("%s|%t", u.Id, u.IsAdmin)
}

func (u *ContextUserInfo) UserId() string {
	return string(u.Id)
}

func DefaultContextUserInfo() *ContextUserInfo {
	return &ContextUserInfo{
		Id:      CtxUnknownUserId,
		IsAdmin: false,
	}
}

func SystemAdminContextUserInfo() *ContextUserInfo {
	return &ContextUserInfo{
		Id:      CtxSystemAdminId,
		IsAdmin: true,
	}
}

func SetUserInfo(ctx context.Context, info *ContextUserInfo) context.Context {
	return context.WithValue(ctx, ctxUserInfo, info)
}

func GetUserInfo(ctx context.Context) *ContextUserInfo {
	rawInfo := ctx.Value(ctxUserInfo)
	if rawInfo == nil {
		return DefaultContextUserInfo()
	}

	if info, ok := rawInfo.(*ContextUserInfo); ok {
		return info
	}

	return DefaultContextUserInfo()
}

// ValidateAdminAccessRights returns ErrNoPermission if the context user is not an administrator.
func ValidateAdminAccessRights(ctx context.Context) error {
	info := GetUserInfo(ctx)
	if info.IsAdmin {
		return nil
	}

	return fmt.Errorf("admin access denied for user %s: %w", info.Id, ErrNoPermission)
}

// ValidateUserAccessRights returns ErrNoPermission if the context user is neither an
// administrator nor the user identified by the given id.
func ValidateUserAccessRights(ctx context.Context, id UserIdentifier) error {
	info := GetUserInfo(ctx)
	if info.IsAdmin {
		return nil
	}
	if info.Id == id {
		return nil
	}

	return fmt.Errorf("access denied for user %s: %w", info.Id, ErrNoPermission)
}
