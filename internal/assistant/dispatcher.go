package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Dispatcher 按顺序执行分类出的任务
type Dispatcher struct {
	chat   ChatResponder
	search Searcher
	apps   AppController
	logger *zap.Logger
}

// NewDispatcher 创建 Dispatcher 实例
func NewDispatcher(chat ChatResponder, search Searcher, apps AppController, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		chat:   chat,
		search: search,
		apps:   apps,
		logger: logger,
	}
}

// Dispatch 依次执行任务，并把每个任务的输出按原顺序拼接
// 参数:
//   - ctx: 上下文
//   - tasks: 已解析的任务列表
//
// 返回:
//   - string: 拼接后的回复
//   - error: 对话或搜索服务出错时直接返回，不继续后续任务
func (d *Dispatcher) Dispatch(ctx context.Context, tasks []Task) (string, error) {
	outputs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out, err := d.run(ctx, task)
		if err != nil {
			return "", err
		}
		outputs = append(outputs, out)
	}
	return JoinTaskOutputs(outputs), nil
}

// run 执行单个任务
func (d *Dispatcher) run(ctx context.Context, task Task) (string, error) {
	switch task.Kind {
	case TaskGeneral:
		out, err := d.chat.Chat(ctx, task.Arg)
		if err != nil {
			return "", fmt.Errorf("general task %q: %w", task.Arg, err)
		}
		return out, nil

	case TaskRealtime:
		out, err := d.search.Search(ctx, task.Arg)
		if err != nil {
			return "", fmt.Errorf("realtime task %q: %w", task.Arg, err)
		}
		return out, nil

	case TaskOpen:
		// 应用控制的结果不影响回复
		if err := d.apps.Open(ctx, task.Arg); err != nil {
			d.logger.Warn("Failed to open app", zap.String("app", task.Arg), zap.Error(err))
		}
		return OpenedReply(task.Arg), nil

	case TaskClose:
		if err := d.apps.Close(ctx, task.Arg); err != nil {
			d.logger.Warn("Failed to close app", zap.String("app", task.Arg), zap.Error(err))
		}
		return ClosedReply(task.Arg), nil

	default:
		return NotUnderstoodReply, nil
	}
}

// OpenedReply 打开应用后的确认语
func OpenedReply(app string) string {
	return app + "을(를) 열었습니다."
}

// ClosedReply 关闭应用后的确认语
func ClosedReply(app string) string {
	return app + "을(를) 닫았습니다."
}
