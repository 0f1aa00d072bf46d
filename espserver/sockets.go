package espserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

type outMessage struct {
	Source string                 `json:"source"`
	Data   map[string]interface{} `json:"data"`
}

type socket struct {
	name string
	out  chan<- interface{}
}

type socketIndexResp struct {
	Sockets []string `json:"sockets"`
}

var socketsLock sync.Mutex
var sockets = map[string]socket{}

func socketsInitRoute(r *mux.Router) {
	r.HandleFunc("/sockets", socketsIndexHandle).Methods("GET")
	r.HandleFunc("/sockets/websocket", websocketHandle).Methods("GET")
}

func socketsIndexHandle(w http.ResponseWriter, r *http.Request) {
	socketsLock.Lock()
	resp := socketIndexResp{make([]string, 0, len(sockets))}
	for name := range sockets {
		resp.Sockets = append(resp.Sockets, name)
	}
	socketsLock.Unlock()

	respondJSON(w, http.StatusOK, resp)
}

// socketSendData broadcasts one event to every connected socket. Slow
// consumers drop events rather than stalling the core's callbacks.
func socketSendData(source string, data interface{}) {
	gdata := make(map[string]interface{})
	jsondata, _ := json.Marshal(data)
	json.Unmarshal(jsondata, &gdata)

	msg := outMessage{source, gdata}

	socketsLock.Lock()
	for _, sk := range sockets {
		select {
		case sk.out <- msg:
		default:
		}
	}
	socketsLock.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var wsID uint

func websocketHandle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	socketsLock.Lock()
	name := fmt.Sprintf("websocket%d", wsID)
	wsID++
	out := make(chan interface{}, 16)
	sockets[name] = socket{name: name, out: out}
	socketsLock.Unlock()

	remove := func() {
		conn.Close()
		socketsLock.Lock()
		delete(sockets, name)
		socketsLock.Unlock()
	}

	// out pump
	go func() {
		for message := range out {
			if err := conn.WriteJSON(message); err != nil {
				log.Println(name, "write error, disconnecting")
				remove()
				return
			}
		}
	}()

	// drain inbound control frames so pings/pongs keep flowing; we take no
	// commands over the socket
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Println(name, "read error, disconnecting")
				remove()
				return
			}
		}
	}()
}
