package bot

import "errors"

const (
	CommandCollect  = "collect"
	CommandSources  = "sources"
	CommandSchedule = "schedule"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command 是聊天平台投递过来的一次指令调用
type Command struct {
	Name    string  `json:"command_name"`
	Options Options `json:"options"`
}

// Options 中未提供的字段为 nil，由 Bot 使用配置的默认值填充
type Options struct {
	Source     *string `json:"source,omitempty"`
	Query      *string `json:"query,omitempty"`
	MaxResults *int    `json:"max_results,omitempty"`
}
