package user

import (
	"context"
	"testing"

	"alipan-client/internal/models"
)

func TestTokenMapGet(t *testing.T) {
	m := NewTokenMap(newFakeStore(), nil)

	t.Run("空ID返回占位记录", func(t *testing.T) {
		token := m.Get("")
		if token == nil {
			t.Fatal("Get 永远不应返回 nil")
		}
		if token.AccessToken != "" {
			t.Error("占位记录的 access_token 应为空")
		}
		if token.TokenType != "" {
			t.Errorf("占位记录的 token_type 应为空, got %q", token.TokenType)
		}
		if token.SignInfo.SignMon != -1 || token.SignInfo.SignDay != -1 {
			t.Error("占位记录的签到记录应为 -1/-1")
		}
	})

	t.Run("未知ID返回占位记录", func(t *testing.T) {
		token := m.Get("nobody")
		if token == nil || token.UserID != "" {
			t.Error("未知 ID 应返回全默认值的占位记录")
		}
	})

	t.Run("GetLoaded区分缺失与占位", func(t *testing.T) {
		if _, ok := m.GetLoaded("nobody"); ok {
			t.Error("未知 ID 的 GetLoaded 应报告不存在")
		}
		m.Set(makeToken("u1", "张三"))
		got, ok := m.GetLoaded("u1")
		if !ok || got.UserID != "u1" || got.Name != "张三" {
			t.Errorf("GetLoaded 未返回缓存中的记录: %+v", got)
		}
	})

	t.Run("读到的是快照_外部修改不影响缓存", func(t *testing.T) {
		m.Set(makeToken("u2", "李四"))

		got := m.Get("u2")
		got.AccessToken = "tampered"
		got.Name = "被篡改"
		if cached := m.Get("u2"); cached.AccessToken != "at-u2" || cached.Name != "李四" {
			t.Error("修改 Get 返回的记录不应影响缓存内容")
		}

		for _, item := range m.List() {
			item.Name = "被篡改"
		}
		if cached := m.Get("u2"); cached.Name != "李四" {
			t.Error("修改 List 返回的记录不应影响缓存内容")
		}
	})

	t.Run("写入的是快照_写入后修改原记录不影响缓存", func(t *testing.T) {
		token := makeToken("u3", "王五")
		m.Set(token)
		token.AccessToken = "changed-after-set"
		if cached := m.Get("u3"); cached.AccessToken != "at-u3" {
			t.Error("Set 之后修改原记录不应影响缓存内容")
		}
	})
}

func TestTokenMapSet(t *testing.T) {
	t.Run("空ID记录不入缓存", func(t *testing.T) {
		m := NewTokenMap(newFakeStore(), nil)
		m.Set(models.DefaultTokenInfo())
		if m.Len() != 0 {
			t.Errorf("缓存条目数 = %d, 期望 0", m.Len())
		}
	})

	t.Run("同一ID覆盖写入不产生重复", func(t *testing.T) {
		m := NewTokenMap(newFakeStore(), nil)
		m.Set(makeToken("u1", "张三"))
		m.Set(makeToken("u1", "张三改名"))
		if m.Len() != 1 {
			t.Errorf("缓存条目数 = %d, 期望 1", m.Len())
		}
		if got := m.Get("u1").Name; got != "张三改名" {
			t.Errorf("覆盖后名称 = %q, 期望 张三改名", got)
		}
	})
}

func TestTokenMapPutSync(t *testing.T) {
	t.Run("写穿透到持久层并广播", func(t *testing.T) {
		store := newFakeStore()
		msg := &fakeBroadcaster{}
		m := NewTokenMap(store, msg)

		if err := m.PutSync(context.Background(), makeToken("u1", "张三")); err != nil {
			t.Fatalf("PutSync 失败: %v", err)
		}
		if !store.hasUser("u1") {
			t.Error("记录未写入持久层")
		}
		if msg.clears != 1 {
			t.Errorf("广播次数 = %d, 期望 1", msg.clears)
		}
	})

	t.Run("空ID记录为无操作", func(t *testing.T) {
		store := newFakeStore()
		msg := &fakeBroadcaster{}
		m := NewTokenMap(store, msg)

		if err := m.PutSync(context.Background(), models.DefaultTokenInfo()); err != nil {
			t.Fatalf("空 ID 的 PutSync 不应报错: %v", err)
		}
		if store.saveCount != 0 || msg.clears != 0 {
			t.Error("空 ID 记录不应触发持久化或广播")
		}
	})
}

func TestTokenMapList(t *testing.T) {
	m := NewTokenMap(newFakeStore(), nil)
	m.Set(makeToken("u3", "王五"))
	m.Set(makeToken("u1", "张三"))
	m.Set(makeToken("u2", "李四"))

	list := m.List()
	if len(list) != 3 {
		t.Fatalf("列表长度 = %d, 期望 3", len(list))
	}
	// 拼音序：李四 < 王五 < 张三
	want := []string{"李四", "王五", "张三"}
	for i, token := range list {
		if token.Name != want[i] {
			t.Errorf("第 %d 项 = %q, 期望 %q", i, token.Name, want[i])
		}
	}
}

func TestTokenMapClear(t *testing.T) {
	m := NewTokenMap(newFakeStore(), nil)
	m.Set(makeToken("u1", "张三"))
	m.Set(makeToken("u2", "李四"))

	m.Remove("u1")
	if _, ok := m.GetLoaded("u1"); ok {
		t.Error("Remove 后记录仍在缓存中")
	}
	m.Clear()
	if m.Len() != 0 {
		t.Errorf("Clear 后缓存条目数 = %d, 期望 0", m.Len())
	}
}
