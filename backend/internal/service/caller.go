package service

import "github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"

// Caller 调用方身份，由 Handler 从 JWT 上下文构造
type Caller struct {
	ID   string
	Role string
}

// Is 调用方角色是否属于给定角色之一
func (c Caller) Is(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

func (c Caller) require(roles ...string) error {
	if !c.Is(roles...) {
		return ErrForbidden
	}
	return nil
}

func (c Caller) isResident() bool { return c.Role == model.RoleResident }
