// Package timex provides a time.Time wrapper with a fixed JSON layout
// Package timex 提供固定 JSON 格式的 time.Time 包装类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Layout is the serialization format used across API responses
// Layout 是 API 响应统一使用的序列化格式
const Layout = "2006-01-02 15:04:05"

// Time wraps time.Time and serializes as "2006-01-02 15:04:05"
// Time 包装 time.Time，序列化为 "2006-01-02 15:04:05"
type Time time.Time

// Now returns the current time as a timex.Time
// Now 返回当前时间
func Now() Time {
	return Time(time.Now())
}

func (t Time) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", tt.Format(Layout))), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `""` || s == "null" {
		*t = Time(time.Time{})
		return nil
	}
	tt, err := time.ParseInLocation(`"`+Layout+`"`, s, time.Local)
	if err != nil {
		return err
	}
	*t = Time(tt)
	return nil
}

// Value implements driver.Valuer so the type can be stored by gorm
// Value 实现 driver.Valuer，使该类型可被 gorm 存储
func (t Time) Value() (driver.Value, error) {
	return time.Time(t), nil
}

// Scan implements sql.Scanner
// Scan 实现 sql.Scanner
func (t *Time) Scan(v interface{}) error {
	switch value := v.(type) {
	case time.Time:
		*t = Time(value)
		return nil
	case []byte:
		tt, err := time.ParseInLocation(Layout, string(value), time.Local)
		if err != nil {
			return err
		}
		*t = Time(tt)
		return nil
	case string:
		tt, err := time.ParseInLocation(Layout, value, time.Local)
		if err != nil {
			return err
		}
		*t = Time(tt)
		return nil
	}
	return fmt.Errorf("cannot scan %T into timex.Time", v)
}

func (t Time) String() string {
	return time.Time(t).Format(Layout)
}

// Time returns the underlying time.Time
// Time 返回底层的 time.Time
func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

// Sub returns the duration t-u
// Sub 返回时间差 t-u
func (t Time) Sub(u Time) time.Duration {
	return time.Time(t).Sub(time.Time(u))
}
