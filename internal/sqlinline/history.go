package sqlinline

const QInsertCreativeRecord = `--sql 8c3f1a52-74bd-4a8e-9a01-cc5b2d6f3e19
insert into creative_records(
  id,
  card_id,
  mode,
  campaign_id,
  entity_id,
  paid,
  uploaded_count,
  preview_urls,
  created_at
)
values ($1::uuid, $2, $3, $4, $5, $6::bool, $7::int, $8, now());
`

const QLastRecordForCard = `--sql 2b9ce4d7-0f61-4c38-8d2a-57e8a41bb0c6
select id, mode, campaign_id, entity_id, paid, uploaded_count, created_at
from creative_records
where card_id = $1
order by created_at desc
limit 1;
`
