package service

import "time"

// Clock 抽象当前时间，便于测试时间相关不变量（如 gradedAt >= submittedAt）
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 生产环境默认时钟
func SystemClock() Clock { return systemClock{} }
