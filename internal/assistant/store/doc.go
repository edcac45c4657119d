// Package store 提供助手服务的数据存储层。
//
// 该包包含两部分：基于 MongoDB 的会话存储（chats/messages 两个集合），
// 以及基于 Milvus 的向量索引适配层。所有会话读写都在查询条件中
// 携带所有权过滤，非本人会话等同于不存在。
package store
