package assistant

import (
	"strings"
)

// TaskKind 任务类型
type TaskKind int

const (
	TaskUnknown  TaskKind = iota // 无法识别的任务
	TaskGeneral                  // 一般对话
	TaskRealtime                 // 实时搜索
	TaskOpen                     // 打开应用
	TaskClose                    // 关闭应用
)

// 任务在分类服务文本协议中的前缀，按匹配顺序排列
var taskPrefixes = []struct {
	kind   TaskKind
	prefix string
}{
	{TaskGeneral, "general"},
	{TaskRealtime, "realtime"},
	{TaskOpen, "open"},
	{TaskClose, "close"},
}

// String 返回任务类型对应的前缀
func (k TaskKind) String() string {
	for _, p := range taskPrefixes {
		if p.kind == k {
			return p.prefix
		}
	}
	return "unknown"
}

// Task 一条分类后的意图
type Task struct {
	Kind TaskKind // 任务类型
	Arg  string   // 去掉前缀后的参数，可以为空
	Raw  string   // 原始文本（已去首尾空白）
}

// ParseTask 把分类服务返回的 "前缀 参数" 文本解析为 Task
// 未匹配任何前缀时 Kind 为 TaskUnknown
func ParseTask(raw string) Task {
	cleaned := strings.TrimSpace(raw)
	for _, p := range taskPrefixes {
		if strings.HasPrefix(cleaned, p.prefix) {
			return Task{
				Kind: p.kind,
				Arg:  strings.TrimSpace(strings.TrimPrefix(cleaned, p.prefix)),
				Raw:  cleaned,
			}
		}
	}
	return Task{Kind: TaskUnknown, Raw: cleaned}
}

// ParseTasks 保持顺序地解析一组任务文本
func ParseTasks(raws []string) []Task {
	tasks := make([]Task, 0, len(raws))
	for _, raw := range raws {
		tasks = append(tasks, ParseTask(raw))
	}
	return tasks
}

// String 还原为文本协议格式
func (t Task) String() string {
	if t.Kind == TaskUnknown {
		return t.Raw
	}
	if t.Arg == "" {
		return t.Kind.String()
	}
	return t.Kind.String() + " " + t.Arg
}
