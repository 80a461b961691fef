package term

// Map 是保持插入顺序的 string -> Value 映射
//
// 为什么不用内置 map：编码输出按“映射的迭代顺序”逐条渲染，
// 内置 map 的随机迭代顺序会破坏 create 的字节级确定性 (可复现构建)。
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap 创建一个空映射
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set 写入一个键值对
// 重复 Set 同一个 key 会覆盖值，但保留首次插入的位置
func (m *Map) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get 读取 key 对应的值
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has 检查 key 是否存在
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete 删除一个键值对 (保序删除)
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len 返回键值对数量
func (m *Map) Len() int { return len(m.keys) }

// Keys 返回插入顺序的 key 切片 (调用方不应修改)
func (m *Map) Keys() []string { return m.keys }
