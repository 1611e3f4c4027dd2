package grpc

import (
	"context"

	"github.com/St1cky1/task-service/internal/entity"
	"google.golang.org/grpc"
)

const serviceName = "tasks.v1.TaskService"

// TaskServiceServer - серверная часть tasks.v1.TaskService.
type TaskServiceServer interface {
	CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error)
	GetTask(ctx context.Context, req *GetTaskRequest) (*entity.Task, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*entity.Task, error)
	DeleteTask(ctx context.Context, req *DeleteTaskRequest) (*DeleteTaskResponse, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	SuggestTasks(ctx context.Context, req *SuggestTasksRequest) (*SuggestTasksResponse, error)
}

// TaskServiceDesc описывает сервис вручную: сообщения кодируются JSON, без сгенерированных protobuf типов.
var TaskServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateTask", TaskServiceServer.CreateTask),
		unaryMethod("GetTask", TaskServiceServer.GetTask),
		unaryMethod("UpdateTask", TaskServiceServer.UpdateTask),
		unaryMethod("DeleteTask", TaskServiceServer.DeleteTask),
		unaryMethod("ListTasks", TaskServiceServer.ListTasks),
		unaryMethod("SuggestTasks", TaskServiceServer.SuggestTasks),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tasks/v1/tasks.json",
}

// RegisterTaskServiceServer регистрирует реализацию на gRPC сервере.
func RegisterTaskServiceServer(s grpc.ServiceRegistrar, srv TaskServiceServer) {
	s.RegisterService(&TaskServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

// unaryMethod собирает grpc.MethodDesc с тем же видом обработчика, что генерирует protoc-gen-go-grpc.
func unaryMethod[Req, Resp any](name string, call func(TaskServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	handler := func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TaskServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(name),
		}
		next := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TaskServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, next)
	}
	return grpc.MethodDesc{MethodName: name, Handler: handler}
}
