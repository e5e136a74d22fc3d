package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/sevaroy/TTITI/modules/common/config"
	"github.com/sevaroy/TTITI/modules/sticker"
	"github.com/sevaroy/TTITI/modules/worker"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		// 프로덕션에서는 특정 도메인만 허용하도록 수정
		return true
	},
}

// 런 진행률을 구독하는 클라이언트
type Client struct {
	conn  *websocket.Conn
	runID string
	send  chan []byte
}

// ProgressMessage - 웹소켓으로 푸시되는 진행 이벤트
type ProgressMessage struct {
	Type      string `json:"type"`
	RunID     string `json:"run_id"`
	Completed int64  `json:"completed"`
	Total     int64  `json:"total"`
	Status    string `json:"status"`
}

// ProgressHub - 런 ID별 구독자 관리
type ProgressHub struct {
	mutex    sync.RWMutex
	watchers map[string]map[*Client]bool
	metrics  *ServerMetrics
}

// 서버 메트릭
type ServerMetrics struct {
	TotalConnections int       `json:"totalConnections"`
	StartTime        time.Time `json:"startTime"`
	mutex            sync.RWMutex
}

var progressHub = &ProgressHub{
	watchers: make(map[string]map[*Client]bool),
	metrics: &ServerMetrics{
		StartTime: time.Now(),
	},
}

// addClient - 구독자 등록
func (h *ProgressHub) addClient(client *Client) {
	h.mutex.Lock()
	if h.watchers[client.runID] == nil {
		h.watchers[client.runID] = make(map[*Client]bool)
	}
	h.watchers[client.runID][client] = true
	watcherCount := len(h.watchers[client.runID])
	h.mutex.Unlock()

	h.metrics.mutex.Lock()
	h.metrics.TotalConnections++
	h.metrics.mutex.Unlock()

	log.Printf("👤 Watcher joined run %s (Watchers: %d)", client.runID, watcherCount)
}

// removeClient - 구독자 제거
func (h *ProgressHub) removeClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, ok := h.watchers[client.runID]
	if !ok {
		return
	}
	if _, exists := clients[client]; exists {
		close(client.send)
		delete(clients, client)
		log.Printf("👋 Watcher left run %s (Remaining: %d)", client.runID, len(clients))
	}
	if len(clients) == 0 {
		delete(h.watchers, client.runID)
	}
}

// Broadcast - 런의 모든 구독자에게 진행 이벤트 푸시
func (h *ProgressHub) Broadcast(runID string, completed, total int64, status string) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := h.watchers[runID]
	if len(clients) == 0 {
		return
	}

	messageBytes, err := json.Marshal(ProgressMessage{
		Type:      "progress",
		RunID:     runID,
		Completed: completed,
		Total:     total,
		Status:    status,
	})
	if err != nil {
		log.Printf("Error marshaling progress message: %v", err)
		return
	}

	for client := range clients {
		select {
		case client.send <- messageBytes:
		default:
			close(client.send)
			delete(clients, client)
		}
	}
}

// WebSocket 핸들러 - GET /ws?run=<runId>
func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	runID := r.URL.Query().Get("run")
	if runID == "" {
		log.Printf("Missing run parameter")
		conn.Close()
		return
	}

	client := &Client{
		conn:  conn,
		runID: runID,
		send:  make(chan []byte, 256),
	}

	log.Printf("🔍 New WebSocket connection - Run: %s", runID)
	progressHub.addClient(client)

	go client.writePump()
	go client.readPump()
}

// 클라이언트로부터 읽기 (연결 종료 감지용)
func (c *Client) readPump() {
	defer func() {
		progressHub.removeClient(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// 클라이언트로 메시지 쓰기
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "ttiti-sticker-server",
	})
}

// 서버 메트릭 조회 엔드포인트
func getMetrics(w http.ResponseWriter, r *http.Request) {
	progressHub.metrics.mutex.RLock()
	startTime := progressHub.metrics.StartTime
	totalConnections := progressHub.metrics.TotalConnections
	progressHub.metrics.mutex.RUnlock()

	progressHub.mutex.RLock()
	watchedRuns := len(progressHub.watchers)
	currentWatchers := 0
	for _, clients := range progressHub.watchers {
		currentWatchers += len(clients)
	}
	progressHub.mutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"server": map[string]interface{}{
			"uptime":           time.Since(startTime).String(),
			"startTime":        startTime,
			"totalConnections": totalConnections,
			"watchedRuns":      watchedRuns,
			"currentWatchers":  currentWatchers,
		},
	})
}

func main() {
	// 환경변수 로드
	if _, err := config.LoadConfig(); err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// 런 레지스트리 초기화 + 정리 루틴
	registry := sticker.NewRegistry()
	registry.StartCleanupRoutine()

	// Redis Queue Worker 시작 (백그라운드)
	go worker.StartWorker(registry, progressHub.Broadcast)

	// 라우터 설정
	r := mux.NewRouter()

	// CORS 미들웨어 적용
	r.Use(enableCORS)

	// 라우트 설정
	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", handleWebSocket)
	r.HandleFunc("/metrics", getMetrics).Methods("GET")

	stickerHandler := sticker.NewHandler(registry)
	if stickerHandler == nil {
		log.Fatal("❌ Failed to initialize sticker handler")
	}
	stickerHandler.RegisterRoutes(r)

	port := config.GetConfig().Port

	log.Printf("🚀 TTITI Sticker Server starting on port %s", port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws?run=<runId>", port)
	log.Printf("❤️  Health check: http://localhost:%s/health", port)
	log.Printf("📊 Metrics: http://localhost:%s/metrics", port)

	// 서버 시작
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
