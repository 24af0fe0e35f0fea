package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"

	"github.com/gorilla/websocket"
)

// ws_smoke signs in against a running server, opens /ws, creates and
// deletes a task over the REST API and prints the events it receives.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	addr := flag.String("addr", "127.0.0.1:"+port, "server host:port")
	email := flag.String("email", "smoke@example.com", "account email")
	password := flag.String("password", "password123", "account password")
	flag.Parse()

	base := "http://" + *addr
	token := signIn(base, *email, *password)

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", *addr, token), nil)
	if err != nil {
		logger.Fatal("dial ws", "error", err)
	}
	defer conn.Close()

	waitFor(conn, "ready")

	var task domain.Task
	call(base, http.MethodPost, "/api/v1/todos", token, map[string]string{"title": "smoke test task"}, &task)
	waitFor(conn, domain.EventTaskCreated)

	call(base, http.MethodDelete, "/api/v1/todos/"+task.ID, token, nil, nil)
	waitFor(conn, domain.EventTaskDeleted)

	logger.Info("smoke test finished")
}

func signIn(base, email, password string) string {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	status := call(base, http.MethodPost, "/api/v1/auth/login", "", body, &resp)
	if status == http.StatusUnauthorized {
		call(base, http.MethodPost, "/api/v1/auth/signup", "", body, &resp)
	}
	if resp.Token == "" {
		logger.Fatal("could not sign in", "email", email)
	}
	return resp.Token
}

func call(base, method, path, token string, body, out any) int {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequest(method, base+path, &buf)
	if err != nil {
		logger.Fatal("build request", "error", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Fatal("request failed", "method", method, "path", path, "error", err)
	}
	defer res.Body.Close()

	logger.Info("http", "method", method, "path", path, "status", res.StatusCode)
	if out != nil && res.StatusCode < 300 {
		_ = json.NewDecoder(res.Body).Decode(out)
	}
	return res.StatusCode
}

func waitFor(conn *websocket.Conn, eventType string) {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		fmt.Printf("event: %s\n", msg)

		var obj struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(msg, &obj) == nil && obj.Type == eventType {
			return
		}
	}
	logger.Fatal("event not received", "type", eventType)
}
