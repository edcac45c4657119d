// Package biz 实现助手服务的业务层。
//
// 核心链路：校验查询 → embedding（带 Redis 缓存）→ 按所有权过滤的
// 向量检索 → 构建 grounded prompt → LLM 生成 → 会话落库。
// 生成环节永不向上抛供应商错误，失败时返回静态兜底答案。
package biz
