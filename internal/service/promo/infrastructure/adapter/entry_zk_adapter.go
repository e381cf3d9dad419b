package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/go-zookeeper/zk"
)

const entryLockRoot = "/promo_entries" // 所有报名占位节点的根

// EntryZkAdapter 是 port.EntryGuard 的 ZooKeeper 实现，
// 供没有 Redis 的部署环境使用。占位通过创建持久节点完成：
// 节点已存在即占位失败，创建成功即占位成功，天然原子。
type EntryZkAdapter struct {
	conn *zk.Conn
}

// NewEntryZkAdapter 连接 ZooKeeper 并确保根节点存在。
func NewEntryZkAdapter(servers []string) (*EntryZkAdapter, error) {
	conn, _, err := zk.Connect(servers, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to zookeeper: %w", err)
	}

	if _, err := conn.Create(entryLockRoot, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
		conn.Close()
		return nil, fmt.Errorf("failed to create entry lock root node: %w", err)
	}
	return &EntryZkAdapter{conn: conn}, nil
}

// Claim 通过创建 /promo_entries/<promo>/<participant> 节点占位。
func (a *EntryZkAdapter) Claim(ctx context.Context, promoSlug, participantID string) (bool, error) {
	promoPath := entryLockRoot + "/" + promoSlug
	if _, err := a.conn.Create(promoPath, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
		return false, fmt.Errorf("failed to create promo node %s: %w", promoPath, err)
	}

	nodePath := promoPath + "/" + participantID
	_, err := a.conn.Create(nodePath, []byte(""), 0, zk.WorldACL(zk.PermAll))
	if err == zk.ErrNodeExists {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create claim node %s: %w", nodePath, err)
	}
	return true, nil
}

// Release 删除占位节点。
func (a *EntryZkAdapter) Release(ctx context.Context, promoSlug, participantID string) error {
	nodePath := entryLockRoot + "/" + promoSlug + "/" + participantID
	err := a.conn.Delete(nodePath, -1)
	if err == zk.ErrNoNode {
		return nil
	}
	return err
}

// Close 关闭 ZooKeeper 连接。
func (a *EntryZkAdapter) Close() {
	a.conn.Close()
}
