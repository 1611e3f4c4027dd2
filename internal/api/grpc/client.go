package grpc

import (
	"context"

	"github.com/St1cky1/task-service/internal/entity"
	"google.golang.org/grpc"
)

// TaskClient - клиент tasks.v1.TaskService, кодирует сообщения JSON кодеком.
type TaskClient struct {
	cc grpc.ClientConnInterface
}

func NewTaskClient(cc grpc.ClientConnInterface) *TaskClient {
	return &TaskClient{cc: cc}
}

func (c *TaskClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}

func (c *TaskClient) CreateTask(ctx context.Context, in *entity.CreateTaskRequest, opts ...grpc.CallOption) (*entity.Task, error) {
	out := new(entity.Task)
	if err := c.invoke(ctx, "CreateTask", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TaskClient) GetTask(ctx context.Context, in *GetTaskRequest, opts ...grpc.CallOption) (*entity.Task, error) {
	out := new(entity.Task)
	if err := c.invoke(ctx, "GetTask", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TaskClient) UpdateTask(ctx context.Context, in *UpdateTaskRequest, opts ...grpc.CallOption) (*entity.Task, error) {
	out := new(entity.Task)
	if err := c.invoke(ctx, "UpdateTask", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TaskClient) DeleteTask(ctx context.Context, in *DeleteTaskRequest, opts ...grpc.CallOption) (*DeleteTaskResponse, error) {
	out := new(DeleteTaskResponse)
	if err := c.invoke(ctx, "DeleteTask", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TaskClient) ListTasks(ctx context.Context, in *ListTasksRequest, opts ...grpc.CallOption) (*ListTasksResponse, error) {
	out := new(ListTasksResponse)
	if err := c.invoke(ctx, "ListTasks", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TaskClient) SuggestTasks(ctx context.Context, in *SuggestTasksRequest, opts ...grpc.CallOption) (*SuggestTasksResponse, error) {
	out := new(SuggestTasksResponse)
	if err := c.invoke(ctx, "SuggestTasks", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
