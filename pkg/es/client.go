// Package es 提供了与 Elasticsearch 职位索引交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"skillsync-go/internal/config"
	"skillsync-go/internal/model"
	"skillsync-go/pkg/log"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES 初始化 Elasticsearch 客户端并确保职位索引存在。
func InitES(esCfg config.ElasticsearchConfig, dims int) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName, dims)
}

// createIndexIfNotExists 检查职位索引是否存在，如果不存在则创建它
func createIndexIfNotExists(indexName string, dims int) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	// 如果 res.StatusCode 是 200，说明索引已存在
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	// 如果 res.StatusCode 是 404，说明索引不存在，需要创建
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	// 元数据字段全部用 keyword，供 kNN 的 term 过滤使用；
	// 向量维度与 embedding 配置保持一致，使用 cosine 相似度。
	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"job_id": { "type": "keyword" },
				"company_name": { "type": "keyword" },
				"title": { "type": "keyword" },
				"location": { "type": "keyword" },
				"max_salary": { "type": "keyword" },
				"pay_period": { "type": "keyword" },
				"formatted_work_type": { "type": "keyword" },
				"text_content": { "type": "text" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"model_version": { "type": "keyword" }
			}
		}
	}`, dims)

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(mapping)),
	)

	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// CountDocuments 返回索引中的文档总数。
func CountDocuments(ctx context.Context, indexName string) (int64, error) {
	res, err := ESClient.Count(
		ESClient.Count.WithContext(ctx),
		ESClient.Count.WithIndex(indexName),
	)
	if err != nil {
		return 0, fmt.Errorf("count request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("elasticsearch count returned an error: %s", res.String())
	}

	var countResp struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&countResp); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return countResp.Count, nil
}

// ScoredPosting 是相似度搜索返回的一条 (职位, 距离) 记录。
// 距离越小越相似，顺序保持存储返回的原始顺序。
type ScoredPosting struct {
	Posting  model.EsJobPosting
	Distance float64
}

// Searcher 定义了查询时对职位索引的只读访问。
type Searcher interface {
	SimilaritySearch(ctx context.Context, queryVector []float32, k int, filters map[string]string) ([]ScoredPosting, error)
}

// Indexer 定义了摄取时对职位索引的写入操作。
type Indexer interface {
	IndexPosting(ctx context.Context, doc model.EsJobPosting) error
}

// JobsIndex 是基于 Elasticsearch 的职位索引适配器，同时实现 Searcher 和 Indexer。
type JobsIndex struct {
	client    *elasticsearch.Client
	indexName string
}

// NewJobsIndex 创建一个新的 JobsIndex 实例。
func NewJobsIndex(client *elasticsearch.Client, indexName string) *JobsIndex {
	return &JobsIndex{client: client, indexName: indexName}
}

// SimilaritySearch 执行 kNN 相似度搜索，可选携带元数据 term 过滤。
// 过滤条件按传入值原样执行，不做任何有效性归一（那是上层引擎的职责）。
func (i *JobsIndex) SimilaritySearch(ctx context.Context, queryVector []float32, k int, filters map[string]string) ([]ScoredPosting, error) {
	knn := map[string]interface{}{
		"field":          "vector",
		"query_vector":   queryVector,
		"k":              k,
		"num_candidates": k * 10,
	}
	if clause := buildFilterClause(filters); clause != nil {
		knn["filter"] = clause
	}

	esQuery := map[string]interface{}{
		"knn":  knn,
		"size": k,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.indexName),
		i.client.Search.WithBody(&buf),
	)
	if err != nil {
		log.Errorf("[JobsIndex] 向 Elasticsearch 发送搜索请求失败: %v", err)
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("[JobsIndex] Elasticsearch 返回错误, status: %s", res.Status())
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.EsJobPosting `json:"_source"`
				Score  float64            `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	// cosine kNN 的 _score 归一在 [0,1]，越大越相似；
	// 适配器契约要求距离越小越相似，因此取 distance = 1 - _score。
	results := make([]ScoredPosting, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		results = append(results, ScoredPosting{
			Posting:  hit.Source,
			Distance: 1 - hit.Score,
		})
	}
	return results, nil
}

// IndexPosting 将单个职位文档索引到 Elasticsearch，以 job_id 作为文档 ID（幂等）。
func (i *JobsIndex) IndexPosting(ctx context.Context, doc model.EsJobPosting) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      i.indexName,
		DocumentID: doc.JobID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引职位文档到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index job posting")
	}

	return nil
}

// buildFilterClause 把激活的过滤集合翻译成 ES 过滤子句。
// 多个条件使用 bool.must 组合（AND 语义），单个条件直接使用 term，为空返回 nil。
func buildFilterClause(filters map[string]string) interface{} {
	if len(filters) == 0 {
		return nil
	}
	if len(filters) == 1 {
		for key, value := range filters {
			return map[string]interface{}{
				"term": map[string]interface{}{key: value},
			}
		}
	}
	must := make([]map[string]interface{}, 0, len(filters))
	for key, value := range filters {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{key: value},
		})
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{"must": must},
	}
}
