package sqlinline

const QInsertImage = `--sql 7f3c1a9e-52d4-4e0b-9a6f-0c8b2d1e4f5a
insert into images (operation_type, prompt, media_url, public_id)
values ($1, $2, $3, $4)
returning id, created_at;
`

const QSelectImageByID = `--sql b4e8d0c2-6a1f-4d3b-8e7a-5f9c0b2a1d6e
select id, operation_type, prompt, media_url, public_id, created_at
from images
where id = $1;
`

const QListImages = `--sql 3a5d7f19-8c2e-4b6a-9d0f-1e4c6b8a2d7f
select id, operation_type, prompt, media_url, public_id, created_at
from images
where ($1::text = '' or operation_type = $1)
order by created_at desc, id desc
limit $2 offset $3;
`

const QCountImages = `--sql 9c1b3e5a-7d4f-4a8c-b2e6-0f8d1a3c5e7b
select count(*)
from images
where ($1::text = '' or operation_type = $1);
`

const QDeleteImage = `--sql e6a2c8f4-1b5d-4f7e-a3c9-8d0b2f4e6a1c
delete from images
where id = $1;
`
