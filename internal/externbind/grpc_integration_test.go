package externbind

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cyrusattoun/covenant/internal/span"
)

// TestVerify_GrpcBindResolvesWithInProcessServerRunning spins up an
// in-process gRPC server with no service registered and dials it with
// insecure transport credentials, waiting up to two seconds for the
// connection to settle; the connection state is not asserted. It then
// checks that Verify resolves the bind's service/method from the .proto
// alone. Verify never touches the connection, so nothing here ties the
// resolved names to the running server.
func TestVerify_GrpcBindResolvesWithInProcessServerRunning(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	srv := grpc.NewServer()
	go srv.Serve(lis)
	defer srv.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn.Connect()
	for conn.GetState().String() != "READY" && ctx.Err() == nil {
		if !conn.WaitForStateChange(ctx, conn.GetState()) {
			break
		}
	}

	dir := t.TempDir()
	protoPath := filepath.Join(dir, "greet.proto")
	proto := `syntax = "proto3";
package greet;

service Greeter {
	rpc SayHello (HelloRequest) returns (HelloReply);
}

message HelloRequest { string name = 1; }
message HelloReply { string message = 1; }
`
	if err := os.WriteFile(protoPath, []byte(proto), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Binds: []Bind{{Snippet: "greet.sayHello", Proto: protoPath}}}
	b := NewBinder()

	resolved, verr := b.Verify(cfg, "greet.sayHello", "grpc:greet.Greeter/SayHello", nil, span.New(0, 1))
	if verr != nil {
		t.Fatalf("unexpected diagnostic: %v", verr)
	}
	if resolved.Target != "greet.Greeter/SayHello" {
		t.Errorf("unexpected target: %s", resolved.Target)
	}
}
