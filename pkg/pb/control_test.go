package pb

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestServiceDesc(t *testing.T) {
	if Control_ServiceDesc.ServiceName != "christina.control.v1.Control" {
		t.Errorf("ServiceName = %q", Control_ServiceDesc.ServiceName)
	}

	want := map[string]string{
		"Capture":   Control_Capture_FullMethodName,
		"Current":   Control_Current_FullMethodName,
		"Translate": Control_Translate_FullMethodName,
	}
	if len(Control_ServiceDesc.Methods) != len(want) {
		t.Fatalf("methods = %d, want %d", len(Control_ServiceDesc.Methods), len(want))
	}
	for _, m := range Control_ServiceDesc.Methods {
		full, ok := want[m.MethodName]
		if !ok {
			t.Errorf("unexpected method %q", m.MethodName)
			continue
		}
		if full != "/"+ControlServiceName+"/"+m.MethodName {
			t.Errorf("full method = %q", full)
		}
	}
}

func TestUnimplementedControlServer(t *testing.T) {
	var srv UnimplementedControlServer
	ctx := context.Background()

	if _, err := srv.Capture(ctx, &emptypb.Empty{}); status.Code(err) != codes.Unimplemented {
		t.Errorf("Capture() code = %v, want Unimplemented", status.Code(err))
	}
	if _, err := srv.Current(ctx, &emptypb.Empty{}); status.Code(err) != codes.Unimplemented {
		t.Errorf("Current() code = %v, want Unimplemented", status.Code(err))
	}
	if _, err := srv.Translate(ctx, wrapperspb.String("x")); status.Code(err) != codes.Unimplemented {
		t.Errorf("Translate() code = %v, want Unimplemented", status.Code(err))
	}
}

func TestHandlerDecodesRequest(t *testing.T) {
	srv := echoServer{}
	dec := func(v any) error {
		v.(*wrapperspb.StringValue).Value = "猫"
		return nil
	}

	out, err := _Control_Translate_Handler(srv, context.Background(), dec, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.(*wrapperspb.StringValue).GetValue(); got != "echo:猫" {
		t.Errorf("Translate() = %q, want %q", got, "echo:猫")
	}
}

type echoServer struct{ UnimplementedControlServer }

func (echoServer) Translate(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("echo:" + in.GetValue()), nil
}
